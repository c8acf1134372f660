package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/princekumarofficial/marketplace-service/internal/types/badges"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()

	m.TicketIssued("ngo")
	m.TicketIssued("")
	m.TicketIssued("")
	m.TicketFailed("invalid_request")
	m.BadgesUnlocked([]badges.BadgeKey{badges.FirstDonation, badges.KindSoul, badges.FirstDonation})

	if got := testutil.ToFloat64(m.ticketsIssued.WithLabelValues("default")); got != 2 {
		t.Fatalf("Expected 2 default tickets, got %v", got)
	}
	if got := testutil.ToFloat64(m.ticketsIssued.WithLabelValues("ngo")); got != 1 {
		t.Fatalf("Expected 1 ngo ticket, got %v", got)
	}
	if got := testutil.ToFloat64(m.ticketsFailed.WithLabelValues("invalid_request")); got != 1 {
		t.Fatalf("Expected 1 failed ticket, got %v", got)
	}
	if got := testutil.ToFloat64(m.badgesUnlocked.WithLabelValues("firstDonation")); got != 2 {
		t.Fatalf("Expected 2 firstDonation unlocks, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.TicketIssued("profile")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `marketplace_uploads_tickets_issued_total{kind="profile"} 1`) {
		t.Fatalf("Expected ticket counter in output, got:\n%s", body)
	}
}
