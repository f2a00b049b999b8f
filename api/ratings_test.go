package api

import (
	"math"
	"net/http"
	"testing"

	"github.com/daystram/dammen/rating"
)

func TestGlicko2(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	player := rating.Rating{Rating: 1500, Deviation: 200, Volatility: 0.06}
	rec := do(t, s, http.MethodPost, "/ratings/glicko2", glicko2Request{
		Player: &player,
		Games: []ratedGame{
			{Opponent: rating.Rating{Rating: 1400, Deviation: 30}, Result: "Win"},
			{Opponent: rating.Rating{Rating: 1550, Deviation: 100}, Result: "Loss"},
			{Opponent: rating.Rating{Rating: 1700, Deviation: 300}, Result: "loss"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
	got := decode[glicko2Response](t, rec)
	if got.Before != player {
		t.Errorf("unexpected rating before: got=%+v want=%+v", got.Before, player)
	}
	if math.Abs(got.After.Rating-1464.06) > 0.05 || math.Abs(got.After.Deviation-151.52) > 0.05 {
		t.Errorf("unexpected rating after: got=%+v", got.After)
	}

	rec = do(t, s, http.MethodPost, "/ratings/glicko2", glicko2Request{
		Games: []ratedGame{{Opponent: rating.Default(), Result: "Draw"}},
	})
	got = decode[glicko2Response](t, rec)
	if got.Before != rating.Default() || math.Abs(got.After.Rating-rating.DefaultRating) > 1e-6 {
		t.Errorf("unexpected draw against an equal opponent: got=%+v", got)
	}
}

func TestGlicko2Errors(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	tests := []struct {
		name string
		req  glicko2Request
	}{
		{name: "unknown result", req: glicko2Request{Games: []ratedGame{{Opponent: rating.Default(), Result: "forfeit"}}}},
		{name: "zero deviation", req: glicko2Request{Player: &rating.Rating{Rating: 1500, Volatility: 0.06}}},
		{name: "opponent without deviation", req: glicko2Request{Games: []ratedGame{{Opponent: rating.Rating{Rating: 1500}, Result: "Win"}}}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := do(t, s, http.MethodPost, "/ratings/glicko2", tt.req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("unexpected status: got=%d want=%d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}
