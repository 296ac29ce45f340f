package middleware

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jurados-presence/internal/recordstore"
	"github.com/localnerve/jurados-presence/internal/types"
)

type stubValidator struct {
	userID string
	err    error
	cookie string
	roles  []string
}

func (s *stubValidator) ValidateSession(redirectURL, cookie string, roles []string) (string, error) {
	s.cookie = cookie
	s.roles = roles
	return s.userID, s.err
}

func newApp(v *stubValidator) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var ce *types.CustomError
			if errors.As(err, &ce) {
				return c.Status(ce.Code).SendString(ce.Type)
			}
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
	})
	app.Get("/me", AuthUser(v), func(c *fiber.Ctx) error {
		ctxID, _ := recordstore.UserIDFromContext(c.UserContext())
		return c.SendString(UserID(c) + "|" + ctxID)
	})
	return app
}

func TestAuthUser(t *testing.T) {
	v := &stubValidator{userID: "user-1"}
	app := newApp(v)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", "cookie_session=abc")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}
	if string(body) != "user-1|user-1" {
		t.Errorf("Expected user id in locals and context, got %q", body)
	}
	if v.cookie != "abc" || len(v.roles) != 1 || v.roles[0] != "user" {
		t.Errorf("Unexpected validator input: cookie=%q roles=%v", v.cookie, v.roles)
	}
}

func TestAuthUserRejects(t *testing.T) {
	tests := map[string]struct {
		cookie string
		err    error
	}{
		"missing cookie":  {"", nil},
		"invalid session": {"cookie_session=abc", errors.New("expired")},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			app := newApp(&stubValidator{userID: "user-1", err: tc.err})
			req := httptest.NewRequest("GET", "/me", nil)
			if tc.cookie != "" {
				req.Header.Set("Cookie", tc.cookie)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			if resp.StatusCode != fiber.StatusForbidden {
				t.Errorf("Expected 403, got %d", resp.StatusCode)
			}
		})
	}
}

func TestVersionMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(VersionMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("apiVersion").(string))
	})

	tests := map[string]string{"": DefaultAPIVersion, "1.0": DefaultAPIVersion, "2.1.0": "2.1.0"}
	for header, want := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			req.Header.Set("X-Api-Version", header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		if string(body) != want {
			t.Errorf("Header %q: expected %s, got %s", header, want, body)
		}
	}
}
