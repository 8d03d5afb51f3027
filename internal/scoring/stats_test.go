package scoring

import (
	"reflect"
	"testing"
)

func TestAverage(t *testing.T) {
	tests := []struct {
		score, darts int
		want         float64
	}{
		{0, 0, 0},
		{250, 15, 50},
		{501, 9, 167},
		{100, 7, 42.86},
	}
	for _, tc := range tests {
		if got := Average(tc.score, tc.darts); got != tc.want {
			t.Fatalf("Average(%d, %d) = %v, want %v", tc.score, tc.darts, got, tc.want)
		}
	}
}

func TestAverageCountsBustsAsZero(t *testing.T) {
	throws := []Throw{
		{Score: 60, DartsInTurn: 3},
		{Score: 0, DartsInTurn: 3, Bust: true},
	}
	if got := LegsAverage(throws); got != 30 {
		t.Fatalf("expected 30, got %v", got)
	}
}

func TestFirstNineAverage(t *testing.T) {
	leg1 := []Throw{{Score: 100, DartsInTurn: 3}, {Score: 100, DartsInTurn: 3}, {Score: 100, DartsInTurn: 3}, {Score: 20, DartsInTurn: 3}}
	leg2 := []Throw{{Score: 40, DartsInTurn: 3}}
	if got := FirstNineAverage(leg1); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
	if got := FirstNineAverage(leg1, leg2); got != 85 {
		t.Fatalf("expected 85, got %v", got)
	}
	if got := FirstNineAverage(); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestOneEighties(t *testing.T) {
	leg1 := []Throw{{Score: 180, DartsInTurn: 3}, {Score: 60, DartsInTurn: 3}}
	leg2 := []Throw{{Score: 45, DartsInTurn: 3}, {Score: 180, DartsInTurn: 3}}
	if got := OneEightyCount(leg1, leg2); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := OneEightyDarts(leg1, leg2); !reflect.DeepEqual(got, []int{1, 10}) {
		t.Fatalf("unexpected dart positions %v", got)
	}
}

func TestHighestCheckout(t *testing.T) {
	checkouts := []Checkout{
		{Score: 80, Darts: 2, PlayerID: Player1},
		{Score: 121, Darts: 3, PlayerID: Player2},
		{Score: 100, Darts: 2, PlayerID: Player1},
	}
	if got := HighestCheckout(checkouts, Player1); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
	if got := HighestCheckout(checkouts, Player2); got != 121 {
		t.Fatalf("expected 121, got %d", got)
	}
	if got := HighestCheckout(nil, Player1); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestPlayerID(t *testing.T) {
	if Player1.Other() != Player2 || Player2.Other() != Player1 || NoPlayer.Other() != NoPlayer {
		t.Fatal("unexpected Other")
	}
	if p, err := ParsePlayerID("player2"); err != nil || p != Player2 {
		t.Fatalf("got %v, %v", p, err)
	}
	if _, err := ParsePlayerID("3"); err == nil {
		t.Fatal("expected error")
	}
}
