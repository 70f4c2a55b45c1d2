package echoapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/edulink/backend/core/announcement"
	"github.com/edulink/backend/core/user"
)

func Test_announcementApi_query(t *testing.T) {
	env := setup(t)
	env.db.PutAnnouncement(announcement.Announcement{ID: "1", Title: "Sports Day", Body: "Friday on the main field.", Date: "2026-03-06"})
	env.db.PutAnnouncement(announcement.Announcement{ID: "2", Title: "PTA Meeting", Body: "Next Tuesday, 18h.", Date: "2026-03-10"})
	_, token := env.createUser(t, "Parent", "parent@test.cd", user.RoleParent)

	rec := env.request(t, http.MethodGet, "/v1/announcements", "", nil)
	assertCode(t, rec, http.StatusUnauthorized)

	rec = env.request(t, http.MethodGet, "/v1/announcements", token, nil)
	assertCode(t, rec, http.StatusOK)

	var anns []announcement.Announcement
	decodeJSON(t, rec, &anns)
	assert.Len(t, anns, 2)
}

func Test_announcementApi_stream(t *testing.T) {
	env := setup(t)
	env.db.PutAnnouncement(announcement.Announcement{ID: "1", Title: "Sports Day", Body: "Friday.", Date: "2026-03-06"})
	_, token := env.createUser(t, "Parent", "parent@test.cd", user.RoleParent)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/v1/announcements/stream", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "data: ") {
		t.Fatalf("no event in stream body: %q", body)
	}
	assert.Contains(t, body, "Sports Day")
}
