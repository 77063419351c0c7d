package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID   int64
	Name string
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))
	return db
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, NewDBTracingPlugin(DBTracingConfig{}, zap.NewNop()).Register(db))
	assert.Nil(t, db.Callback().Query().Get("otel_slow_query:query"))
}

func TestDBTracingPlugin_Register(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop()).Register(db))
	assert.NotNil(t, db.Callback().Query().Get("otel_slow_query:query"))
	assert.NotNil(t, db.Callback().Create().Get("otel_timing:before_create"))

	require.NoError(t, db.Create(&widget{Name: "a"}).Error)
	var out []widget
	require.NoError(t, db.Find(&out).Error)
	assert.Len(t, out, 1)
}

func TestDBTracingPlugin_AfterQueryFlagsSlowQueries(t *testing.T) {
	rec := withRecorder(t)
	db := openSQLite(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: 10 * time.Millisecond}, zap.NewNop())

	run := func(started time.Time) {
		ctx, span := otel.Tracer("test").Start(context.Background(), "query")
		tx := db.Session(&gorm.Session{NewDB: true})
		tx.Statement.Context = context.WithValue(ctx, queryStartKey{}, started)
		tx.Statement.Table = "widgets"
		tx.Statement.RowsAffected = 2
		plugin.afterQuery(tx)
		span.End()
	}
	run(time.Now().Add(-time.Second))
	run(time.Now())

	spans := rec.Ended()
	require.Len(t, spans, 2)

	attrs := func(i int) map[string]string {
		out := map[string]string{}
		for _, kv := range spans[i].Attributes() {
			out[string(kv.Key)] = kv.Value.Emit()
		}
		return out
	}
	slow := attrs(0)
	assert.Equal(t, "widgets", slow["db.sql.table"])
	assert.Equal(t, "2", slow["db.rows_affected"])
	assert.Equal(t, "true", slow["db.slow_query"])

	fast := attrs(1)
	assert.NotContains(t, fast, "db.slow_query")
}
