// workers/profile_sync_worker.go
package workers

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	"game-ledger/services"
	"game-ledger/utils"

	"github.com/jonboulle/clockwork"
)

// RemoteProfile is the subset of the profile service's user we mirror.
type RemoteProfile struct {
	ExternalID string    `json:"external_id"`
	Username   string    `json:"username"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type GetProfileChangesResponse struct {
	Users []RemoteProfile `json:"users"`
}

// ProfileSyncWorker keeps ledger nicknames in step with the profile service by
// submitting SetNickname for every changed profile.
type ProfileSyncWorker struct {
	ledger       Executor
	clock        clockwork.Clock
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client

	// cursor is the newest UpdatedAt seen so far.
	cursor time.Time
}

func NewProfileSyncWorker(ledger Executor, clock clockwork.Clock, baseURL, endpointPath, serviceToken string, interval time.Duration) *ProfileSyncWorker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &ProfileSyncWorker{
		ledger:       ledger,
		clock:        clock,
		interval:     interval,
		baseURL:      baseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient:   utils.HTTPClient,
	}
}

func (w *ProfileSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Profile Sync Worker (profile service → nicknames)…")
	go w.run(ctx)
}

func (w *ProfileSyncWorker) run(ctx context.Context) {
	// initial backfill from the beginning of time
	if _, err := w.SyncBatch(ctx); err != nil {
		log.Printf("⚠️ [SYNC] initial profile sync failed: %v", err)
	}

	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.Chan():
			if _, err := w.SyncBatch(ctx); err != nil {
				log.Printf("❌ [SYNC] profile sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Profile Sync Worker stopped")
			return
		}
	}
}

// SyncBatch applies every profile changed since the cursor and returns how
// many nicknames were updated.
func (w *ProfileSyncWorker) SyncBatch(ctx context.Context) (int, error) {
	q := url.Values{}
	q.Set("since", w.cursor.UTC().Format(time.RFC3339))

	var response GetProfileChangesResponse
	if err := utils.GetJSON(ctx, w.httpClient, w.baseURL, w.endpointPath, q, w.serviceToken, &response); err != nil {
		return 0, err
	}
	if len(response.Users) == 0 {
		return 0, nil
	}

	var updated, rejected int
	for _, u := range response.Users {
		if u.ExternalID == "" || u.Username == "" {
			continue
		}
		resp := w.ledger.Execute(ctx, u.ExternalID, services.SetNickname{Name: u.Username})
		if err := resp.Err(); err != nil {
			rejected++
			log.Printf("⚠️ [SYNC] nickname for external_id=%q rejected: %v", u.ExternalID, err)
		} else {
			updated++
		}
		if u.UpdatedAt.After(w.cursor) {
			w.cursor = u.UpdatedAt
		}
	}

	log.Printf("[SYNC] ✅ Synced %d profile(s) (%d updated, %d rejected), cursor=%s",
		len(response.Users), updated, rejected, w.cursor.Format(time.RFC3339))
	return updated, nil
}
