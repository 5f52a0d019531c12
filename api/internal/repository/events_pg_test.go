package repository

import (
	"os"
	"stackspay/api/internal/infra/postgres"
	"testing"
)

func TestCreateEvent(t *testing.T) {
	if os.Getenv("TEST_PG") == "" {
		t.Skip("TEST_PG not set")
	}

	r := InitEventsRepo()

	db := postgres.InitTest(postgres.TEST_CONFIG)

	err := r.Create(db, "webhook_redelivery", 1, "{}")
	t.Log(err)

	// duplicate relation id + type is a no-op
	err = r.Create(db, "webhook_redelivery", 1, "{}")
	t.Log(err)

	err = r.Create(db, "webhook_redelivery", 2, "{}")
	t.Log(err)

	// invalid json payload must fail
	if err := r.Create(db, "webhook_redelivery", 3, "not-json"); err == nil {
		t.Fatal("expected invalid payload error")
	}
}
