package containers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"testing"

	"github.com/localnerve/jurados-presence/internal/assets"
	"github.com/localnerve/jurados-presence/internal/config"
	"github.com/localnerve/jurados-presence/internal/database"
	"github.com/localnerve/jurados-presence/internal/prefs"
	"github.com/localnerve/jurados-presence/internal/presence"
	"github.com/localnerve/jurados-presence/internal/profile"
	"github.com/localnerve/jurados-presence/internal/recordstore"
	"go.uber.org/zap"
)

// TestBackingServices runs the record store, prefs and asset storage against
// real MariaDB, redis and minio containers. Set INTEGRATION=true to run.
func TestBackingServices(t *testing.T) {
	if testing.Short() || os.Getenv("INTEGRATION") != "true" {
		t.Skip("Skipping integration test; set INTEGRATION=true to run")
	}

	tc := Start(t, Options{})
	defer tc.Terminate(t)

	ctx := context.Background()
	log := zap.NewNop()
	cfg := &config.Config{
		DBType:               tc.Env["DB_TYPE"],
		DBHost:               tc.Env["DB_HOST"],
		DBPort:               tc.Env["DB_PORT"],
		DBAppDatabase:        tc.Env["DB_APP_DATABASE"],
		DBAppUser:            tc.Env["DB_APP_USER"],
		DBAppPassword:        tc.Env["DB_APP_PASSWORD"],
		DBAppConnectionLimit: 2,
		DBUser:               tc.Env["DB_USER"],
		DBPassword:           tc.Env["DB_PASSWORD"],
		DBConnectionLimit:    4,
	}

	appDB, err := database.Connect(cfg, log)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer database.Close(appDB)
	if err := database.AutoMigrate(appDB); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}

	userDB, err := database.ConnectUser(cfg, log)
	if err != nil {
		t.Fatalf("ConnectUser failed: %v", err)
	}
	defer database.Close(userDB)
	store := recordstore.NewGormStore(userDB, log, cfg.StoreTimeout)

	t.Run("presence", func(t *testing.T) {
		rec := recordstore.NewRecord(profile.RecordType)
		rec.Set(profile.FieldFullName, "Integration")
		if _, err := store.SaveOne(ctx, rec); err != nil {
			t.Fatalf("SaveOne failed: %v", err)
		}

		svc := presence.NewService(store, log)
		for _, loc := range []string{"loc-1", "loc-2"} {
			if _, err := svc.CheckIn(ctx, rec.ID, loc); err != nil {
				t.Fatalf("CheckIn failed: %v", err)
			}
		}
		counts, err := svc.Counts(ctx)
		if err != nil {
			t.Fatalf("Counts failed: %v", err)
		}
		if counts["loc-1"] != 0 || counts["loc-2"] != 1 {
			t.Errorf("Expected a single check-in at loc-2, got %v", counts)
		}
	})

	t.Run("batch atomicity", func(t *testing.T) {
		first := recordstore.NewRecordWithID("JuradosLocation", "shared-"+strconv.Itoa(os.Getpid()))
		if _, err := store.SaveOne(ctx, first); err != nil {
			t.Fatalf("SaveOne failed: %v", err)
		}
		fresh := recordstore.NewRecord(profile.RecordType)
		clash := recordstore.NewRecordWithID(profile.RecordType, first.ID)
		if err := store.SaveBatch(ctx, []*recordstore.Record{fresh, clash}); err == nil {
			t.Fatal("Expected SaveBatch to fail")
		}
		if _, err := store.FetchRecord(ctx, fresh.ID); !errors.Is(err, recordstore.ErrNotFound) {
			t.Errorf("Expected rollback, got %v", err)
		}
	})

	t.Run("prefs", func(t *testing.T) {
		client, err := prefs.Dial(ctx, tc.Env["REDIS_URL"])
		if err != nil {
			t.Fatalf("Dial failed: %v", err)
		}
		defer client.Close()

		p := prefs.NewRedis(client).For("integration")
		if err := p.SetString(ctx, prefs.KeyUserProfileID, "P1"); err != nil {
			t.Fatalf("SetString failed: %v", err)
		}
		if got, ok, err := p.GetString(ctx, prefs.KeyUserProfileID); err != nil || !ok || got != "P1" {
			t.Errorf("Expected P1, got %q ok=%v err=%v", got, ok, err)
		}
	})

	t.Run("assets", func(t *testing.T) {
		client, err := assets.NewS3Client(assets.S3Config{
			Endpoint:  tc.Env["S3_ENDPOINT"],
			AccessKey: tc.Env["S3_ACCESS_KEY"],
			SecretKey: tc.Env["S3_SECRET_KEY"],
		})
		if err != nil {
			t.Fatalf("NewS3Client failed: %v", err)
		}
		storage := assets.NewS3Storage(client, "jurados-test")

		body := []byte("avatar")
		if err := storage.Put(ctx, "avatars/it.jpg", bytes.NewReader(body), int64(len(body)), assets.ContentTypeJPEG); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		rc, err := storage.Get(ctx, "avatars/it.jpg")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		got, _ := io.ReadAll(rc)
		rc.Close()
		if !bytes.Equal(got, body) {
			t.Errorf("Expected %q, got %q", body, got)
		}
		if err := storage.Delete(ctx, "avatars/it.jpg"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := storage.Get(ctx, "avatars/it.jpg"); !errors.Is(err, assets.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
	})
}
