package workers

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	"game-ledger/services"
	"game-ledger/utils"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	depositsPath = "/api/v1/public/deposits"
	// references older than this behind the sync cursor are forgotten
	depositMemory = 24 * time.Hour
)

// Executor submits operations to the ledger.
type Executor interface {
	Execute(ctx context.Context, caller string, op services.Operation) services.Response
}

// Deposit is one confirmed on-chain deposit reported by the wallet service.
type Deposit struct {
	Reference   string    `json:"reference"`
	Player      string    `json:"player"`
	Amount      uint64    `json:"amount"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// DepositSyncClient turns the wallet service's deposit feed into DepositTokens
// operations. The ledger keeps a receipt per reference, so a restarted client
// replaying the feed window credits nothing twice. applied only saves round
// trips within one process.
type DepositSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Ledger     Executor

	clock    clockwork.Clock
	lastSync time.Time
	applied  map[string]time.Time
}

func NewDepositSyncClient(baseURL, token string, ledger Executor, clock clockwork.Clock) *DepositSyncClient {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &DepositSyncClient{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: utils.HTTPClient,
		Ledger:     ledger,
		clock:      clock,
		lastSync:   clock.Now().UTC().Add(-depositMemory),
		applied:    map[string]time.Time{},
	}
}

func (c *DepositSyncClient) GetConfirmedDeposits(ctx context.Context, since time.Time) ([]Deposit, error) {
	q := url.Values{}
	q.Set("since", since.UTC().Format(time.RFC3339))

	var response struct {
		Deposits []Deposit `json:"deposits"`
	}
	if err := utils.GetJSON(ctx, c.HTTPClient, c.BaseURL, depositsPath, q, c.Token, &response); err != nil {
		return nil, err
	}
	return response.Deposits, nil
}

// SyncOnce fetches deposits since the last successful sync and credits the new
// ones. The cursor only advances when no deposit failed for internal reasons,
// so that window is retried on the next tick.
func (c *DepositSyncClient) SyncOnce(ctx context.Context) (int, error) {
	started := c.clock.Now().UTC()
	deposits, err := c.GetConfirmedDeposits(ctx, c.lastSync)
	if err != nil {
		return 0, err
	}

	credited := 0
	retry := false
	for _, d := range deposits {
		if _, err := uuid.Parse(d.Reference); err != nil {
			log.Printf("⚠️ [DEPOSIT_SYNC] skipping deposit with invalid reference %q", d.Reference)
			continue
		}
		if _, done := c.applied[d.Reference]; done {
			continue
		}

		resp := c.Ledger.Execute(ctx, d.Player, services.DepositTokens{Amount: d.Amount, Reference: d.Reference})
		if resp.Kind == services.RespError {
			switch resp.Error.Kind {
			case services.KindStateConflict:
				// credited by an earlier process
				c.applied[d.Reference] = d.ConfirmedAt
				continue
			case services.KindInternal:
				log.Printf("❌ [DEPOSIT_SYNC] deposit %s for %s failed: %s", d.Reference, d.Player, resp.Error.Message)
				retry = true
				continue
			}
			log.Printf("🚫 [DEPOSIT_SYNC] deposit %s for %s rejected (%s): %s", d.Reference, d.Player, resp.Error.Kind, resp.Error.Message)
		} else {
			credited++
		}
		c.applied[d.Reference] = d.ConfirmedAt
	}

	if !retry {
		c.lastSync = started
		c.forget(started.Add(-depositMemory))
	}
	return credited, nil
}

func (c *DepositSyncClient) forget(before time.Time) {
	for ref, at := range c.applied {
		if at.Before(before) {
			delete(c.applied, ref)
		}
	}
}

// PollDeposits runs SyncOnce on every tick until ctx is done.
func PollDeposits(ctx context.Context, client *DepositSyncClient, pollInterval time.Duration) {
	log.Println("Starting deposit polling...")
	ticker := client.clock.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Deposit polling stopped.")
			return
		case <-ticker.Chan():
			n, err := client.SyncOnce(ctx)
			if err != nil {
				log.Printf("❌ [DEPOSIT_SYNC] error polling deposits: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("✅ [DEPOSIT_SYNC] credited %d deposit(s)", n)
			}
		}
	}
}
