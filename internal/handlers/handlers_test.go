// handlers_test.go
//
// Check-in and profile service for Jurado's Burger locations
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of jurados-presence.
// jurados-presence is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// jurados-presence is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with jurados-presence.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.


package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jurados-presence/internal/alerts"
	"github.com/localnerve/jurados-presence/internal/assets"
	"github.com/localnerve/jurados-presence/internal/handlers"
	"github.com/localnerve/jurados-presence/internal/location"
	"github.com/localnerve/jurados-presence/internal/middleware"
	"github.com/localnerve/jurados-presence/internal/presence"
	"github.com/localnerve/jurados-presence/internal/profile"
	"github.com/localnerve/jurados-presence/internal/session"
	"github.com/localnerve/jurados-presence/internal/testutil"
	"github.com/localnerve/jurados-presence/internal/utils"
	"go.uber.org/zap"
)

var biography = strings.Repeat("Grill cook and burger lover. ", 4)

// cookieValidator treats the session cookie as the user id
type cookieValidator struct{}

func (cookieValidator) ValidateSession(redirectURL, cookie string, roles []string) (string, error) {
	if cookie == "bad" {
		return "", errors.New("expired")
	}
	return cookie, nil
}

type fixture struct {
	app     *fiber.App
	store   *testutil.CountingStore
	storage *assets.LocalStorage
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()

	store := testutil.NewCountingStore(testutil.NewStore(t))
	storage, err := assets.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}

	seeds := []location.Seed{
		{ID: "loc-b", Name: "Beta"},
		{ID: "loc-a", Name: "Alpha"},
	}
	if _, err := location.SeedLocations(ctx, store, seeds); err != nil {
		t.Fatalf("SeedLocations failed: %v", err)
	}

	presenceSvc := presence.NewService(store, log)
	sessions := session.NewRegistry(store, testutil.NewPrefs(t), log, 0)
	routes := &handlers.Routes{
		Locations:  &handlers.LocationHandler{Locations: location.NewService(store, log), Presence: presenceSvc, Log: log},
		Presence:   &handlers.PresenceHandler{Presence: presenceSvc, Sessions: sessions, Log: log},
		Profile:    &handlers.ProfileHandler{Profiles: profile.NewService(store, storage, log), Sessions: sessions, Log: log},
		Onboarding: &handlers.OnboardingHandler{Sessions: sessions, Log: log},
		Assets:     &handlers.AssetHandler{Resolver: assets.NewResolver(store, storage), Log: log},
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	routes.Register(app.Group("/api"), middleware.AuthUser(cookieValidator{}))

	return &fixture{app: app, store: store, storage: storage}
}

func (f *fixture) do(t *testing.T, method, path, user string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if user != "" {
		req.Header.Set("Cookie", "cookie_session="+user)
	}
	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	return resp
}

func (f *fixture) saveProfile(t *testing.T, user string, req handlers.ProfileRequest) *http.Response {
	t.Helper()
	body, _ := json.Marshal(req)
	return f.do(t, "POST", "/api/profile", user, bytes.NewReader(body), fiber.MIMEApplicationJSON)
}

func TestListLocations(t *testing.T) {
	f := setup(t)

	resp := f.do(t, "GET", "/api/locations", "", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	var locations []location.Location
	testutil.ParseJSON(t, resp, &locations)
	if len(locations) != 2 || locations[0].Name != "Alpha" {
		t.Errorf("Expected locations sorted by name, got %+v", locations)
	}

	resp = f.do(t, "GET", "/api/locations/loc-b", "", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	resp = f.do(t, "GET", "/api/locations/missing", "", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusNotFound)
}

func TestListLocationsStoreFailure(t *testing.T) {
	f := setup(t)
	f.store.FailQuery = errors.New("offline")

	resp := f.do(t, "GET", "/api/locations", "", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusServiceUnavailable)

	var body utils.ErrorResponseStruct
	testutil.ParseJSON(t, resp, &body)
	if body.Alert == nil || *body.Alert != alerts.UnableToGetLocations {
		t.Errorf("Expected the locations alert, got %+v", body.Alert)
	}
	if strings.Contains(body.Message, "offline") {
		t.Error("Expected raw error text to stay out of the response")
	}
}

func TestSaveProfileInvalid(t *testing.T) {
	f := setup(t)
	writes := f.store.Writes()

	resp := f.saveProfile(t, "user-1", handlers.ProfileRequest{
		FullName:   "Ana Jurado",
		Profession: "Chef",
		Biography:  strings.Repeat("a", profile.MinBiographyLength-1),
	})
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)

	var body utils.SaveResponseStruct
	testutil.ParseJSON(t, resp, &body)
	if body.Ok || body.Outcome != string(profile.OutcomeInvalid) {
		t.Errorf("Unexpected response %+v", body)
	}
	if len(body.Problems) != 1 || body.Problems[0] != string(profile.ProblemBiography) {
		t.Errorf("Expected a biography problem, got %v", body.Problems)
	}
	if body.Alert == nil || *body.Alert != alerts.IncompleteProfile {
		t.Errorf("Expected the incomplete profile alert, got %+v", body.Alert)
	}
	if f.store.Writes() != writes {
		t.Error("Expected no writes for an invalid profile")
	}
}

func TestProfileLifecycle(t *testing.T) {
	f := setup(t)

	resp := f.do(t, "GET", "/api/profile", "user-1", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusNoContent)
	testutil.AssertNoContent(t, resp)

	resp = f.saveProfile(t, "user-1", handlers.ProfileRequest{FullName: "Ana Jurado", Profession: "Chef", Biography: biography})
	testutil.AssertStatus(t, resp, fiber.StatusCreated)
	var created utils.SaveResponseStruct
	testutil.ParseJSON(t, resp, &created)
	if !created.Ok || created.Outcome != string(profile.OutcomeCreated) || *created.Alert != alerts.ProfileCreated {
		t.Errorf("Unexpected create response %+v", created)
	}

	resp = f.saveProfile(t, "user-1", handlers.ProfileRequest{FullName: "Ana Jurado", Profession: "Head Chef", Biography: biography})
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var updated utils.SaveResponseStruct
	testutil.ParseJSON(t, resp, &updated)
	if updated.Outcome != string(profile.OutcomeUpdated) || *updated.Alert != alerts.ProfileUpdated {
		t.Errorf("Unexpected update response %+v", updated)
	}

	resp = f.do(t, "GET", "/api/profile", "user-1", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var p profile.Profile
	testutil.ParseJSON(t, resp, &p)
	if p.Profession != "Head Chef" {
		t.Errorf("Expected updated profession, got %q", p.Profession)
	}

	resp = f.do(t, "GET", "/api/profile", "user-2", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusNoContent)
}

func TestSaveProfileMultipartAvatar(t *testing.T) {
	f := setup(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("fullName", "Ana Jurado")
	_ = w.WriteField("profession", "Chef")
	_ = w.WriteField("biography", biography)
	part, err := w.CreateFormFile("avatar", "me.png")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	part.Write(testutil.PNG(t, 32, 32))
	w.Close()

	resp := f.do(t, "POST", "/api/profile", "user-1", &buf, w.FormDataContentType())
	testutil.AssertStatus(t, resp, fiber.StatusCreated)

	var body struct {
		Profile profile.Profile `json:"profile"`
	}
	testutil.ParseJSON(t, resp, &body)
	if body.Profile.Avatar == nil {
		t.Fatal("Expected an avatar asset on the saved profile")
	}

	resp = f.do(t, "GET", "/api/assets/"+body.Profile.ID+"/avatar", "", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != assets.ContentTypeJPEG {
		t.Errorf("Expected %s, got %s", assets.ContentTypeJPEG, ct)
	}
	data, _ := io.ReadAll(resp.Body)
	if http.DetectContentType(data) != assets.ContentTypeJPEG {
		t.Error("Expected JPEG bytes")
	}

	resp = f.do(t, "GET", "/api/assets/"+body.Profile.ID+"/banner", "", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusNotFound)
}

func TestSaveProfileBadAvatar(t *testing.T) {
	f := setup(t)
	writes := f.store.Writes()

	resp := f.saveProfile(t, "user-1", handlers.ProfileRequest{
		FullName: "Ana Jurado", Profession: "Chef", Biography: biography, Avatar: []byte("not an image"),
	})
	testutil.AssertStatus(t, resp, fiber.StatusBadRequest)

	var body utils.SaveResponseStruct
	testutil.ParseJSON(t, resp, &body)
	if body.Alert == nil || *body.Alert != alerts.InvalidAvatar {
		t.Errorf("Expected the invalid avatar alert, got %+v", body.Alert)
	}
	if f.store.Writes() != writes {
		t.Error("Expected no writes for a bad avatar")
	}
}

func TestSaveProfileStoreFailure(t *testing.T) {
	f := setup(t)
	f.store.FailSaveBatch = errors.New("offline")

	resp := f.saveProfile(t, "user-1", handlers.ProfileRequest{FullName: "Ana Jurado", Profession: "Chef", Biography: biography})
	testutil.AssertStatus(t, resp, fiber.StatusServiceUnavailable)

	var body utils.ErrorResponseStruct
	testutil.ParseJSON(t, resp, &body)
	if body.Alert == nil || *body.Alert != alerts.ErrorSavingProfile {
		t.Errorf("Expected the save failed alert, got %+v", body.Alert)
	}
}

func TestSaveProfileIdentityFailure(t *testing.T) {
	f := setup(t)
	f.store.FailCurrentUser = errors.New("offline")

	resp := f.saveProfile(t, "user-1", handlers.ProfileRequest{FullName: "Ana Jurado", Profession: "Chef", Biography: biography})
	testutil.AssertStatus(t, resp, fiber.StatusServiceUnavailable)

	var body utils.ErrorResponseStruct
	testutil.ParseJSON(t, resp, &body)
	if body.Alert == nil || *body.Alert != alerts.FailedToFetchUserRecord {
		t.Errorf("Expected the user record alert, got %+v", body.Alert)
	}
}

func TestCheckInFlow(t *testing.T) {
	f := setup(t)

	resp := f.do(t, "POST", "/api/presence/checkin/loc-a", "user-1", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusNotFound)

	resp = f.saveProfile(t, "user-1", handlers.ProfileRequest{FullName: "Ana Jurado", Profession: "Chef", Biography: biography})
	testutil.AssertStatus(t, resp, fiber.StatusCreated)

	resp = f.do(t, "POST", "/api/presence/checkin/loc-a", "user-1", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var event presence.Event
	testutil.ParseJSON(t, resp, &event)
	if event.Kind != presence.CheckedIn || event.LocationID != "loc-a" {
		t.Errorf("Unexpected event %+v", event)
	}

	resp = f.do(t, "POST", "/api/presence/checkin/loc-b", "user-1", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	resp = f.do(t, "GET", "/api/presence/status?location=loc-b", "user-1", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var status presence.Status
	testutil.ParseJSON(t, resp, &status)
	if !status.CheckedIn || !status.IsPresent {
		t.Errorf("Expected present at loc-b, got %+v", status)
	}

	resp = f.do(t, "GET", "/api/presence/counts", "", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var counts map[string]int
	testutil.ParseJSON(t, resp, &counts)
	if len(counts) != 1 || counts["loc-b"] != 1 {
		t.Errorf("Expected one check-in at loc-b, got %v", counts)
	}

	resp = f.do(t, "GET", "/api/presence/counts?locations=loc-a", "", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var filtered map[string]int
	testutil.ParseJSON(t, resp, &filtered)
	if len(filtered) != 0 {
		t.Errorf("Expected no check-ins at loc-a, got %v", filtered)
	}

	resp = f.do(t, "GET", "/api/locations/loc-b/profiles", "", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var at []profile.Profile
	testutil.ParseJSON(t, resp, &at)
	if len(at) != 1 || at[0].FullName != "Ana Jurado" {
		t.Errorf("Expected Ana at loc-b, got %+v", at)
	}

	resp = f.do(t, "POST", "/api/presence/checkout", "user-1", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	testutil.ParseJSON(t, resp, &event)
	if event.Kind != presence.CheckedOut || event.LocationID != "loc-b" {
		t.Errorf("Unexpected event %+v", event)
	}

	resp = f.do(t, "GET", "/api/presence/listing", "", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var listing map[string][]profile.Profile
	testutil.ParseJSON(t, resp, &listing)
	if len(listing) != 0 {
		t.Errorf("Expected empty listing after checkout, got %v", listing)
	}
}

func TestCheckInUnknownLocation(t *testing.T) {
	f := setup(t)

	resp := f.saveProfile(t, "user-1", handlers.ProfileRequest{FullName: "Ana Jurado", Profession: "Chef", Biography: biography})
	testutil.AssertStatus(t, resp, fiber.StatusCreated)
	var saved utils.SaveResponseStruct
	testutil.ParseJSON(t, resp, &saved)
	created, ok := saved.Profile.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected a profile in the save response, got %T", saved.Profile)
	}
	profileID, _ := created["id"].(string)
	if profileID == "" {
		t.Fatalf("Expected a profile id, got %v", created)
	}

	for _, target := range []string{"no-such-location", profileID} {
		resp = f.do(t, "POST", "/api/presence/checkin/"+target, "user-1", nil, "")
		testutil.AssertStatus(t, resp, fiber.StatusNotFound)
		var body utils.ErrorResponseStruct
		testutil.ParseJSON(t, resp, &body)
		if body.Alert == nil || *body.Alert != alerts.UnknownLocation {
			t.Errorf("Check-in at %q: expected the unknown location alert, got %+v", target, body.Alert)
		}
	}

	resp = f.do(t, "GET", "/api/presence/counts", "", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	var counts map[string]int
	testutil.ParseJSON(t, resp, &counts)
	if len(counts) != 0 {
		t.Errorf("Expected no check-ins, got %v", counts)
	}
}

func TestCheckInStoreFailure(t *testing.T) {
	f := setup(t)

	resp := f.saveProfile(t, "user-1", handlers.ProfileRequest{FullName: "Ana Jurado", Profession: "Chef", Biography: biography})
	testutil.AssertStatus(t, resp, fiber.StatusCreated)

	f.store.FailSaveOne = errors.New("offline")
	resp = f.do(t, "POST", "/api/presence/checkin/loc-a", "user-1", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusServiceUnavailable)

	var body utils.ErrorResponseStruct
	testutil.ParseJSON(t, resp, &body)
	if body.Alert == nil || *body.Alert != alerts.UnableToCheckInOrCheckOut {
		t.Errorf("Expected the check-in alert, got %+v", body.Alert)
	}
}

func TestOnboarding(t *testing.T) {
	f := setup(t)

	var got handlers.OnboardingResponse
	resp := f.do(t, "GET", "/api/onboarding", "user-1", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)
	testutil.ParseJSON(t, resp, &got)
	if got.HasSeenOnboarding {
		t.Error("Expected onboarding not yet seen")
	}

	resp = f.do(t, "POST", "/api/onboarding", "user-1", nil, "")
	testutil.AssertStatus(t, resp, fiber.StatusOK)

	resp = f.do(t, "GET", "/api/onboarding", "user-1", nil, "")
	testutil.ParseJSON(t, resp, &got)
	if !got.HasSeenOnboarding {
		t.Error("Expected onboarding seen")
	}
}

func TestAuthRequired(t *testing.T) {
	f := setup(t)

	for _, path := range []string{"/api/profile", "/api/onboarding", "/api/presence/status"} {
		resp := f.do(t, "GET", path, "", nil, "")
		testutil.AssertStatus(t, resp, fiber.StatusForbidden)

		resp = f.do(t, "GET", path, "bad", nil, "")
		testutil.AssertStatus(t, resp, fiber.StatusForbidden)
	}
}
