package collector

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultTickerListURL = "https://archives.nseindia.com/content/indices/ind_nifty500list.csv"

// NSETickerList downloads an NSE index constituents CSV and turns its Symbol
// column into provider tickers.
type NSETickerList struct {
	Client  *resty.Client
	URL     string
	Suffix  string
	Exclude []string
}

// NewNSETickerList creates a ticker source with optional proxy support.
func NewNSETickerList(listURL, suffix string, exclude []string, proxyURL string, timeout time.Duration) *NSETickerList {
	if listURL == "" {
		listURL = DefaultTickerListURL
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", browserUA).
		SetHeader("Accept", "text/csv,text/plain,*/*")
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &NSETickerList{Client: client, URL: listURL, Suffix: suffix, Exclude: exclude}
}

func (n *NSETickerList) FetchTickers(ctx context.Context) ([]string, error) {
	resp, err := n.Client.R().SetContext(ctx).Get(n.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch ticker list: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch ticker list: status %d", resp.StatusCode())
	}
	return ParseTickerCSV(bytes.NewReader(resp.Body()), n.Suffix, n.Exclude)
}

// ParseTickerCSV reads the Symbol column of r, trims it, drops excluded and
// duplicate entries and appends suffix. Order follows the file.
func ParseTickerCSV(r io.Reader, suffix string, exclude []string) ([]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read ticker csv header: %w", err)
	}
	symbolIdx := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")), "symbol") {
			symbolIdx = i
			break
		}
	}
	if symbolIdx < 0 {
		return nil, fmt.Errorf("ticker csv: missing Symbol column")
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		skip[strings.ToUpper(strings.TrimSpace(e))] = struct{}{}
	}

	var tickers []string
	seen := make(map[string]struct{})
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ticker csv record: %w", err)
		}
		if symbolIdx >= len(record) {
			continue
		}
		sym := strings.TrimSpace(record[symbolIdx])
		if sym == "" {
			continue
		}
		if _, ok := skip[strings.ToUpper(sym)]; ok {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		tickers = append(tickers, sym+suffix)
	}
	return tickers, nil
}
