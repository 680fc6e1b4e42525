package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/username/finboard/backend/src/config"
	"github.com/username/finboard/backend/src/logger"
)

func newFakeExchange(t *testing.T) (*httptest.Server, AnnouncementService) {
	t.Helper()
	logger.InitLogger("error")

	mux := http.NewServeMux()
	mux.HandleFunc("/api/smd", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		var body struct {
			FromDate string `json:"fromDate"`
			ToDate   string `json:"toDate"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.FromDate == "" {
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"reqSmdData":[{"announcementId":42,"company":"LOLC"}]}`))
	})
	mux.HandleFunc("/api/getAnnouncementById", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostFormValue("announcementId") == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"reqBaseInfo":{"announcementId":"42"}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	config.Cfg = &config.AppConfig{
		CSEBaseURL:     srv.URL,
		CSEHTTPTimeout: 5 * time.Second,
	}
	return srv, NewAnnouncementService()
}

func TestCompanyAnnouncements(t *testing.T) {
	_, svc := newFakeExchange(t)

	payload, err := svc.CompanyAnnouncements(context.Background(), "2025-01-01", "2025-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded struct {
		ReqSmdData []struct {
			AnnouncementID int `json:"announcementId"`
		} `json:"reqSmdData"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not passed through as JSON: %v", err)
	}
	if len(decoded.ReqSmdData) != 1 || decoded.ReqSmdData[0].AnnouncementID != 42 {
		t.Errorf("unexpected payload: %s", payload)
	}
}

func TestAnnouncementDetails(t *testing.T) {
	_, svc := newFakeExchange(t)

	payload, err := svc.AnnouncementDetails(context.Background(), "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload) == 0 {
		t.Error("expected a proxied body")
	}

	t.Run("missing id", func(t *testing.T) {
		if _, err := svc.AnnouncementDetails(context.Background(), ""); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestAnnouncementUpstreamFailure(t *testing.T) {
	srv, _ := newFakeExchange(t)
	srv.Close()
	svc := NewAnnouncementService()

	if _, err := svc.CompanyAnnouncements(context.Background(), "2025-01-01", "2025-01-31"); err == nil {
		t.Fatal("expected error when the exchange is unreachable")
	}
}
