package service

import (
	"context"
	"strings"
	"testing"
)

func TestFolioConfigValidate(t *testing.T) {
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	tests := []struct {
		name    string
		cfg     FolioConfig
		wantErr []string
	}{
		{
			name: "valid config, yahoo source",
			cfg: FolioConfig{
				Symbols:       []string{"NVDA"},
				DataSource:    YahooSource,
				StoreEndpoint: "http://localhost:4001",
				Cancel:        cancel,
			},
			wantErr: nil,
		},
		{
			name: "finnhub source requires api key",
			cfg: FolioConfig{
				Symbols:       []string{"NVDA"},
				DataSource:    FinnhubSource,
				StoreEndpoint: "http://localhost:4001",
				Cancel:        cancel,
			},
			wantErr: []string{"finnhub api key cannot be an empty string"},
		},
		{
			name: "unknown data source",
			cfg: FolioConfig{
				Symbols:       []string{"NVDA"},
				DataSource:    "bloomberg",
				StoreEndpoint: "http://localhost:4001",
				Cancel:        cancel,
			},
			wantErr: []string{"unknown data source"},
		},
		{
			name: "missing everything",
			cfg:  FolioConfig{DataSource: YahooSource},
			wantErr: []string{
				"no symbols provided for folio service",
				"store endpoint cannot be an empty string",
				"context cancellation function cannot be nil",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("expected no error, got: %v", err)
				}
				return
			}

			if err == nil {
				t.Errorf("expected error(s) %v, got none", tt.wantErr)
				return
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("expected error to contain %q, got %v", want, err)
				}
			}
		})
	}
}

func TestDemoSnapshot(t *testing.T) {
	snapshot := DemoSnapshot()

	// Ensure the starter account carries the expected holdings.
	if snapshot.Cash != 50000 {
		t.Errorf("expected starter cash 50000, got %v", snapshot.Cash)
	}
	if len(snapshot.Positions) != 3 {
		t.Fatalf("expected 3 starter positions, got %d", len(snapshot.Positions))
	}
	if snapshot.Positions[0].Symbol != "NVDA" || snapshot.Positions[0].ZeroCost.Shares != 2 {
		t.Errorf("unexpected starter NVDA position: %+v", snapshot.Positions[0])
	}
	if len(snapshot.Transactions) != 3 {
		t.Fatalf("expected 3 starter transactions, got %d", len(snapshot.Transactions))
	}
	if snapshot.Transactions[2].BalanceAfter != 48240 {
		t.Errorf("unexpected final transaction balance: %v", snapshot.Transactions[2].BalanceAfter)
	}
}
