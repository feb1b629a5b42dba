package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

type reportPayload struct {
	TotalBalance     float64 `json:"totalBalance"`
	CurrentMarketBTC float64 `json:"currentMarketBTC"`
}

// Reporter posts the portfolio value to a webhook URL.
type Reporter struct {
	url    string
	client *http.Client
}

func NewReporter(url string) *Reporter {
	return &Reporter{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Report sends both values rounded down to whole units.
func (r *Reporter) Report(ctx context.Context, totalValue, referenceRate float64) error {
	body, err := json.Marshal(reportPayload{
		TotalBalance:     math.Floor(totalValue),
		CurrentMarketBTC: math.Floor(referenceRate),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}
