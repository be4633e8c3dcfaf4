package tradetax

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEvent_MarshalJSON(t *testing.T) {
	ts := time.Date(2022, time.March, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		event Event
		want  string
	}{
		{BuyEvent{Quantity: 2, Price: 10.5, Time: ts}, `{"kind":"buy","quantity":2,"price":10.5,"time":"2022-03-01T10:00:00Z"}`},
		{SellEvent{Quantity: 1, Price: 3, Time: ts}, `{"kind":"sell","quantity":1,"price":3,"time":"2022-03-01T10:00:00Z"}`},
		{RealizedGain{Amount: -4.25, Time: ts}, `{"kind":"realized-gain","amount":-4.25,"time":"2022-03-01T10:00:00Z"}`},
		{HoldingPeriod{Duration: 400 * 24 * time.Hour}, `{"kind":"holding-period","days":400,"seconds":34560000,"longTerm":true}`},
		{Fee{Amount: 0.5}, `{"kind":"fee","amount":0.5}`},
		{RemainingPosition{Quantity: 3}, `{"kind":"remaining-position","quantity":3}`},
		{UnmatchedSell{Quantity: 2, Time: ts}, `{"kind":"unmatched-sell","quantity":2,"time":"2022-03-01T10:00:00Z"}`},
		{BuyToOpen{Amount: -150, Time: ts}, `{"kind":"buy-to-open","amount":-150,"time":"2022-03-01T10:00:00Z"}`},
		{SellToOpen{Amount: 150, Time: ts}, `{"kind":"sell-to-open","amount":150,"time":"2022-03-01T10:00:00Z"}`},
		{BuyToClose{Amount: -20, Time: ts}, `{"kind":"buy-to-close","amount":-20,"time":"2022-03-01T10:00:00Z"}`},
		{SellToClose{Amount: 20, Time: ts}, `{"kind":"sell-to-close","amount":20,"time":"2022-03-01T10:00:00Z"}`},
		{NetRealized{Total: 0}, `{"kind":"net-realized","total":0}`},
	}
	for _, tt := range tests {
		t.Run(string(tt.event.Kind()), func(t *testing.T) {
			got, err := json.Marshal(tt.event)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHoldingPeriod_LongTerm(t *testing.T) {
	if (HoldingPeriod{Duration: 364 * 24 * time.Hour}).LongTerm() {
		t.Error("364 days must be short term")
	}
	if !(HoldingPeriod{Duration: 365 * 24 * time.Hour}).LongTerm() {
		t.Error("365 days must be long term")
	}
}

func TestCashFlow(t *testing.T) {
	if _, ok := CashFlow(Fee{Amount: 1}); ok {
		t.Error("a fee is not an option cash flow")
	}
	if v, ok := CashFlow(SellToClose{Amount: 12}); !ok || v != 12 {
		t.Errorf("CashFlow(SellToClose) = %v, %v", v, ok)
	}
}
