package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/cafedesk/cafedesk/config"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/service"
	"github.com/cafedesk/cafedesk/internal/store"
)

func testConfig(t *testing.T) *config.AppConfig {
	cfg := config.DefaultConfig()
	cfg.System.Workdir = t.TempDir()
	cfg.System.Location = "UTC"
	return cfg
}

func TestInitLoggerWritesRotatedFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Logger.FileEnable = true
	cfg.Logger.Filename = filepath.Join(cfg.System.Workdir, "logs", "cafedesk.log")
	cfg.Logger.MaxSize = 1
	require.NoError(t, cfg.Validate())

	InitLogger(cfg)
	defer zap.ReplaceGlobals(zap.NewNop())
	zap.L().Info("logger ready")
	_ = zap.L().Sync()

	assert.FileExists(t, cfg.Logger.Filename)
}

func TestOpenStore(t *testing.T) {
	t.Run("csv", func(t *testing.T) {
		st, err := OpenStore(testConfig(t))
		require.NoError(t, err)
		defer st.Close()
	})

	t.Run("bolt", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Storage.Backend = config.BackendBolt
		st, err := OpenStore(cfg)
		require.NoError(t, err)
		defer st.Close()
		assert.FileExists(t, cfg.GetBoltPath())
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Storage.Backend = config.BackendSqlite
		cfg.Storage.DSN = filepath.Join(cfg.System.Workdir, "cafedesk.sqlite")
		st, err := OpenStore(cfg)
		require.NoError(t, err)
		defer st.Close()
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Storage.Backend = "redis"
		_, err := OpenStore(cfg)
		assert.Error(t, err)
	})
}

func TestInitSeedsDemoData(t *testing.T) {
	a := NewApplication(testConfig(t))
	require.NoError(t, a.Init())
	defer a.Release()

	ctx := context.Background()
	users := store.NewRepo[domain.User](a.Store(), domain.Users)
	assert.Len(t, users.All(ctx), 3)
	for _, email := range []string{"customer@demo.com", "staff@demo.com", "manager@demo.com"} {
		u, found := users.GetBy(ctx, "email", email)
		require.True(t, found, email)
		assert.Equal(t, domain.DefaultPassword, u.Password)
	}
	assert.NotEmpty(t, a.Service().ListMenu(ctx))
	assert.Len(t, a.Store().Load(ctx, domain.Tables), 4)
	assert.Len(t, a.Store().Load(ctx, domain.StaffMembers), 1)
	assert.NotNil(t, a.Scheduler())
	assert.Len(t, a.Scheduler().Entries(), 2)

	// a second pass leaves existing rows alone
	a.checkDemoData(ctx)
	assert.Len(t, users.All(ctx), 3)
	assert.Len(t, a.Store().Load(ctx, domain.Tables), 4)
}

func TestInitDb(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedDemo = false
	a := NewApplication(cfg)
	require.NoError(t, a.Init())
	defer a.Release()

	ctx := context.Background()
	require.NoError(t, a.Store().Append(ctx, domain.Tables, domain.Encode(domain.Table{ID: "9", Number: 9, Capacity: 2, Status: domain.TableAvailable})))
	require.NoError(t, a.InitDb())
	for _, schema := range domain.Collections {
		assert.Empty(t, a.Store().Load(ctx, schema), schema.Name)
	}

	cfg.SeedDemo = true
	require.NoError(t, a.InitDb())
	assert.Len(t, a.Store().Load(ctx, domain.Users), 3)
	assert.Empty(t, a.Store().Load(ctx, domain.Orders))
}

func TestRunRollups(t *testing.T) {
	a := NewApplication(testConfig(t))
	require.NoError(t, a.Init())
	defer a.Release()

	assert.NotPanics(t, a.RunRollups)
	assert.NotPanics(t, a.SchedSweepTokensTask)
}

func TestNotifier(t *testing.T) {
	pool, err := ants.NewPool(1)
	require.NoError(t, err)
	defer pool.Release()

	sent := make(chan *gomail.Message, 4)
	n := NewNotifier(config.MailConfig{From: "cafe@demo.com", Notify: "owner@demo.com"}, pool)
	n.send = func(m *gomail.Message) error {
		sent <- m
		return nil
	}

	bus := EventBus.New()
	require.NoError(t, n.Subscribe(bus))

	bus.Publish(service.TopicLowStock, service.LowStockEvent{
		Item:     domain.InventoryItem{ID: "1", Name: "Fresh milk", Quantity: 2, Unit: "l", MinStock: 10},
		Shortage: 8,
	})
	select {
	case m := <-sent:
		assert.Equal(t, []string{"owner@demo.com"}, m.GetHeader("To"))
		assert.Equal(t, []string{"Low stock: Fresh milk"}, m.GetHeader("Subject"))
	case <-time.After(2 * time.Second):
		t.Fatal("low stock mail was not sent")
	}

	bus.Publish(service.TopicPasswordReset, service.PasswordResetEvent{
		Email: "customer@demo.com",
		Name:  "Demo Customer",
		Link:  "/reset-password?token=abc",
	})
	select {
	case m := <-sent:
		assert.Equal(t, []string{"customer@demo.com"}, m.GetHeader("To"))
		assert.Equal(t, []string{"cafe@demo.com"}, m.GetHeader("From"))
	case <-time.After(2 * time.Second):
		t.Fatal("reset mail was not sent")
	}

	bus.Publish(service.TopicReservationNew, domain.Reservation{
		ID: "RES-20251130080000", CustomerEmail: "customer@demo.com", Date: "2025-12-01", Time: "19:00", Guests: 4, TableID: "2",
	})
	select {
	case m := <-sent:
		assert.Equal(t, []string{"owner@demo.com"}, m.GetHeader("To"))
		assert.Equal(t, []string{"New reservation 2025-12-01 19:00"}, m.GetHeader("Subject"))
	case <-time.After(2 * time.Second):
		t.Fatal("reservation mail was not sent")
	}

	assert.True(t, bus.HasCallback(service.TopicOrderPlaced))
	bus.Publish(service.TopicOrderPlaced, domain.Order{ID: "ORD-20251130080000", Total: 80000})
	select {
	case m := <-sent:
		t.Fatalf("order placed should not mail, got %v", m.GetHeader("Subject"))
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNotifierMailDisabled(t *testing.T) {
	pool, err := ants.NewPool(1)
	require.NoError(t, err)
	defer pool.Release()

	n := NewNotifier(config.MailConfig{Notify: "owner@demo.com"}, pool)
	assert.Nil(t, n.send)

	bus := EventBus.New()
	require.NoError(t, n.Subscribe(bus))
	assert.NotPanics(t, func() {
		bus.Publish(service.TopicLowStock, service.LowStockEvent{Item: domain.InventoryItem{Name: "Sugar"}})
	})
}
