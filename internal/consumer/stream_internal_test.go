package consumer

import (
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestParseMessage(t *testing.T) {
	entry := redis.XMessage{
		ID: "1700000000000-0",
		Values: map[string]interface{}{
			"data": `{"event_id":"evt-1","sport_key":"soccer_epl","books":[{"platform":"betfair","market_id":"1.23","runners":[{"name":"Arsenal","back_odds":2.5,"lay_odds":2.52}]}]}`,
		},
	}

	msg, err := parseMessage("markets.snapshot", entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ID != entry.ID || msg.StreamKey != "markets.snapshot" {
		t.Errorf("unexpected envelope %+v", msg)
	}
	if msg.Snapshot.EventID != "evt-1" || len(msg.Snapshot.Books) != 1 {
		t.Fatalf("unexpected snapshot %+v", msg.Snapshot)
	}
	runner := msg.Snapshot.Books[0].Runners[0]
	if runner.Name != "Arsenal" || runner.BackOdds != 2.5 || runner.LayOdds != 2.52 {
		t.Errorf("unexpected runner %+v", runner)
	}
}

func TestParseMessage_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
	}{
		{"missing data", map[string]interface{}{"payload": "{}"}},
		{"bad json", map[string]interface{}{"data": "{not json"}},
		{"string odds", map[string]interface{}{"data": `{"books":[{"runners":[{"back_odds":"2.5"}]}]}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseMessage("markets.snapshot", redis.XMessage{ID: "1-0", Values: tt.values}); err == nil {
				t.Error("expected error")
			}
		})
	}
}
