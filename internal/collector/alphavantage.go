package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"PillarReport/internal/model"
)

const (
	DefaultAlphaVantageURL = "https://www.alphavantage.co/query"
	defaultCallPause       = time.Second
	defaultTimeout         = 30 * time.Second
)

// AlphaVantageOptions configures an AlphaVantageSource.
type AlphaVantageOptions struct {
	BaseURL   string
	APIKey    string
	ProxyURL  string
	CallPause time.Duration // minimum spacing between outbound calls
	Timeout   time.Duration
}

// AlphaVantageSource implements Source against the Alpha Vantage query API.
// Calls are spaced by CallPause regardless of how fast callers ask.
type AlphaVantageSource struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewAlphaVantageSource creates a source with optional proxy support.
func NewAlphaVantageSource(opts AlphaVantageOptions, log zerolog.Logger) *AlphaVantageSource {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultAlphaVantageURL
	}
	if opts.CallPause < 0 {
		opts.CallPause = defaultCallPause
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	transport := &http.Transport{}
	if opts.ProxyURL != "" {
		if u, err := url.Parse(opts.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}

	limit := rate.Inf
	if opts.CallPause > 0 {
		limit = rate.Every(opts.CallPause)
	}
	return &AlphaVantageSource{
		BaseURL: opts.BaseURL,
		APIKey:  opts.APIKey,
		Client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(limit, 1),
		log:     log.With().Str("source", "alphavantage").Logger(),
	}
}

func (s *AlphaVantageSource) Name() string { return "alphavantage" }

// avStatement is the JSON shape of INCOME_STATEMENT, BALANCE_SHEET and CASH_FLOW.
type avStatement struct {
	Symbol           string           `json:"symbol"`
	AnnualReports    []map[string]any `json:"annualReports"`
	QuarterlyReports []map[string]any `json:"quarterlyReports"`
}

// avDaily is the JSON shape of TIME_SERIES_DAILY.
type avDaily struct {
	Meta struct {
		Symbol        string `json:"2. Symbol"`
		LastRefreshed string `json:"3. Last Refreshed"`
	} `json:"Meta Data"`
	Series map[string]map[string]string `json:"Time Series (Daily)"`
}

// avError captures the messages Alpha Vantage returns with HTTP 200.
type avError struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

func (s *AlphaVantageSource) FetchStatement(ctx context.Context, ticker string, kind model.StatementKind) (*model.StatementBundle, error) {
	body, err := s.query(ctx, ticker, kind, nil)
	if err != nil {
		return nil, err
	}
	var raw avStatement
	if err := decodeJSON(body, &raw); err != nil {
		return nil, &model.FetchError{Ticker: ticker, Kind: kind, Err: fmt.Errorf("decode statement: %w", err)}
	}
	bundle := &model.StatementBundle{
		Ticker:    ticker,
		Kind:      kind,
		Annual:    toPeriods(raw.AnnualReports),
		Quarterly: toPeriods(raw.QuarterlyReports),
	}
	s.log.Debug().
		Str("ticker", ticker).
		Str("kind", string(kind)).
		Int("annual", len(bundle.Annual)).
		Int("quarterly", len(bundle.Quarterly)).
		Msg("statement fetched")
	return bundle, nil
}

func (s *AlphaVantageSource) FetchOverview(ctx context.Context, ticker string) (model.Overview, error) {
	body, err := s.query(ctx, ticker, model.OverviewKind, nil)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := decodeJSON(body, &raw); err != nil {
		return nil, &model.FetchError{Ticker: ticker, Kind: model.OverviewKind, Err: fmt.Errorf("decode overview: %w", err)}
	}
	return model.Overview(stringFields(raw)), nil
}

func (s *AlphaVantageSource) FetchDailyPrices(ctx context.Context, ticker string) (*model.PriceSeries, error) {
	body, err := s.query(ctx, ticker, model.DailyPricesKind, url.Values{"outputsize": {"full"}})
	if err != nil {
		return nil, err
	}
	series, err := parseDailyTimeSeries(body)
	if err != nil {
		return nil, &model.FetchError{Ticker: ticker, Kind: model.DailyPricesKind, Err: err}
	}
	if series.Symbol == "" {
		series.Symbol = ticker
	}
	return series, nil
}

// query performs one paced GET and returns the body after status and
// in-band error checks.
func (s *AlphaVantageSource) query(ctx context.Context, ticker string, kind model.StatementKind, extra url.Values) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &model.FetchError{Ticker: ticker, Kind: kind, Err: fmt.Errorf("wait for rate limiter: %w", err)}
	}

	params := url.Values{}
	params.Set("function", string(kind))
	params.Set("symbol", ticker)
	params.Set("apikey", s.APIKey)
	for k, vs := range extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	endpoint := s.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &model.FetchError{Ticker: ticker, Kind: kind, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, &model.FetchError{Ticker: ticker, Kind: kind, Err: redactKey(err, s.APIKey)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.FetchError{Ticker: ticker, Kind: kind, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	s.log.Debug().
		Str("ticker", ticker).
		Str("function", string(kind)).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("provider call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.FetchError{
			Ticker:     ticker,
			Kind:       kind,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", truncate(string(body), 200)),
		}
	}
	if err := checkAPIError(body); err != nil {
		return nil, &model.FetchError{Ticker: ticker, Kind: kind, StatusCode: resp.StatusCode, Err: err}
	}
	return body, nil
}

// checkAPIError detects the error payloads Alpha Vantage sends with status 200.
func checkAPIError(body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte("Thank you for using Alpha Vantage")) {
		return model.ErrRateLimited
	}
	if string(trimmed) == "{}" {
		return fmt.Errorf("%w: empty response", model.ErrSymbolNotFound)
	}
	var probe avError
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		// Not an object; the caller's decode reports it.
		return nil
	}
	switch {
	case probe.ErrorMessage != "":
		return fmt.Errorf("%w: %s", model.ErrSymbolNotFound, probe.ErrorMessage)
	case probe.Note != "":
		return fmt.Errorf("%w: %s", model.ErrRateLimited, probe.Note)
	case probe.Information != "":
		return fmt.Errorf("%w: %s", model.ErrRateLimited, probe.Information)
	}
	return nil
}

func parseDailyTimeSeries(body []byte) (*model.PriceSeries, error) {
	var raw avDaily
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode daily series: %w", err)
	}
	bars := make([]model.OHLCV, 0, len(raw.Series))
	for date, v := range raw.Series {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("daily series date %q: %w", date, err)
		}
		bar := model.OHLCV{Time: t}
		fields := []struct {
			key string
			dst *float64
		}{
			{"1. open", &bar.Open},
			{"2. high", &bar.High},
			{"3. low", &bar.Low},
			{"4. close", &bar.Close},
		}
		for _, f := range fields {
			if *f.dst, err = strconv.ParseFloat(v[f.key], 64); err != nil {
				return nil, fmt.Errorf("daily series %s %s: %w", date, f.key, err)
			}
		}
		if bar.Volume, err = strconv.ParseInt(v["5. volume"], 10, 64); err != nil {
			return nil, fmt.Errorf("daily series %s volume: %w", date, err)
		}
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.After(bars[j].Time) })
	return &model.PriceSeries{
		Symbol:        raw.Meta.Symbol,
		LastRefreshed: raw.Meta.LastRefreshed,
		Bars:          bars,
	}, nil
}

func decodeJSON(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(v)
}

func toPeriods(reports []map[string]any) []model.StatementPeriod {
	periods := make([]model.StatementPeriod, 0, len(reports))
	for _, r := range reports {
		fields := stringFields(r)
		periods = append(periods, model.StatementPeriod{
			FiscalDateEnding: fields["fiscalDateEnding"],
			Fields:           fields,
		})
	}
	return periods
}

// stringFields flattens a decoded JSON object into provider strings.
// Null values are dropped so they surface as missing fields.
func stringFields(raw map[string]any) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			continue
		case string:
			out[k] = t
		case json.Number:
			out[k] = t.String()
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out
}

func redactKey(err error, key string) error {
	if key == "" {
		return err
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return errors.New(strings.ReplaceAll(err.Error(), key, "***"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
