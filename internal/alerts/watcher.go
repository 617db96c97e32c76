package alerts

import (
	"fmt"
	"log"
	"sync"

	"github.com/jmoiron/sqlx"

	"fieldwatch-backend/internal/models"
)

// Sender is the push transport. *FCMService implements it in production.
type Sender interface {
	SendMulticast(tokens []string, title, body string, data map[string]string) error
}

// TokenSource lists the device tokens that should receive alerts.
type TokenSource interface {
	ManagerTokens() ([]string, error)
}

// DBTokenSource reads registered dashboard device tokens.
type DBTokenSource struct {
	db *sqlx.DB
}

func NewDBTokenSource(db *sqlx.DB) *DBTokenSource {
	return &DBTokenSource{db: db}
}

func (s *DBTokenSource) ManagerTokens() ([]string, error) {
	var tokens []string
	if err := s.db.Select(&tokens, `SELECT token FROM device_tokens`); err != nil {
		return nil, fmt.Errorf("fetching device tokens: %w", err)
	}
	return tokens, nil
}

// Watcher pushes one notification when an on-shift engineer transitions
// into a stale ping, and re-arms once the engineer reports again. The first
// refresh after startup only primes the latch, so a deploy never replays
// alerts for engineers that were already silent.
type Watcher struct {
	sender Sender
	tokens TokenSource

	mu      sync.Mutex
	primed  bool
	latched map[string]bool
}

func NewWatcher(sender Sender, tokens TokenSource) *Watcher {
	return &Watcher{
		sender:  sender,
		tokens:  tokens,
		latched: make(map[string]bool),
	}
}

// HandleRefresh runs after every successful snapshot refresh.
func (w *Watcher) HandleRefresh(engineers []models.EnrichedEngineer) {
	w.mu.Lock()

	current := make(map[string]bool)
	var newlyStale []models.EnrichedEngineer
	for _, e := range engineers {
		if !e.PingStale || !e.OnShift {
			continue
		}
		current[e.Username] = true
		if w.primed && !w.latched[e.Username] {
			newlyStale = append(newlyStale, e)
		}
	}

	w.latched = current
	w.primed = true
	w.mu.Unlock()

	if len(newlyStale) == 0 {
		return
	}

	tokens, err := w.tokens.ManagerTokens()
	if err != nil {
		log.Printf("❌ Device-silence alert skipped: %v", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	title, body, data := buildAlert(newlyStale)
	if err := w.sender.SendMulticast(tokens, title, body, data); err != nil {
		log.Printf("❌ Device-silence alert failed: %v", err)
		return
	}
	log.Printf("🔔 Device-silence alert sent for %d engineer(s)", len(newlyStale))
}

func buildAlert(engineers []models.EnrichedEngineer) (title, body string, data map[string]string) {
	usernames := ""
	for i, e := range engineers {
		if i > 0 {
			usernames += ","
		}
		usernames += e.Username
	}
	data = map[string]string{
		"type":      "ping_stale",
		"usernames": usernames,
	}

	if len(engineers) == 1 {
		e := engineers[0]
		title = "Engineer stopped reporting"
		body = fmt.Sprintf("%s (%s): %s", e.Name, e.Username, e.PingStaleReason)
		return title, body, data
	}

	title = fmt.Sprintf("%d engineers stopped reporting", len(engineers))
	body = usernames
	return title, body, data
}
