package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"edupay/internal/client"
	"edupay/internal/config"
	"edupay/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Order{},
		&model.WebhookEvent{},
		&model.Video{},
		&model.Paper{},
		&model.Tute{},
		&model.CoursePackage{},
	))

	return db
}

var testPaymentConfig = config.Payment{Provider: "hosted", Currency: "LKR"}

// fakeGateway is a scriptable client.GatewayClient for service tests.
type fakeGateway struct {
	session    *client.CheckoutSession
	sessionErr error

	callback    *client.CallbackResult
	callbackErr error

	fetchOutcome client.Outcome
	fetchRef     string
	fetchErr     error
	fetchCalls   int
}

func (g *fakeGateway) CreateSession(ctx context.Context, order *model.Order, itemTitle string) (*client.CheckoutSession, error) {
	if g.sessionErr != nil {
		return nil, g.sessionErr
	}
	if g.session != nil {
		return g.session, nil
	}
	return &client.CheckoutSession{
		GatewayOrderID: "sess-" + order.OrderID,
		RedirectURL:    "https://sandbox.gateway.test/pay/" + order.OrderID,
	}, nil
}

func (g *fakeGateway) VerifyCallback(values url.Values) (*client.CallbackResult, error) {
	if g.callbackErr != nil {
		return nil, g.callbackErr
	}
	return g.callback, nil
}

func (g *fakeGateway) FetchStatus(ctx context.Context, order *model.Order) (client.Outcome, string, error) {
	g.fetchCalls++
	if g.fetchErr != nil {
		return client.OutcomePending, "", g.fetchErr
	}
	return g.fetchOutcome, g.fetchRef, nil
}

// fakeCardGateway additionally satisfies client.CardCharger.
type fakeCardGateway struct {
	fakeGateway

	chargeRef     string
	chargeOutcome client.Outcome
	chargeErr     error
}

func (g *fakeCardGateway) ChargeCard(ctx context.Context, order *model.Order, nonce string) (string, client.Outcome, error) {
	if g.chargeErr != nil {
		return "", client.OutcomePending, g.chargeErr
	}
	return g.chargeRef, g.chargeOutcome, nil
}
