// Package weather fetches current conditions from OpenWeatherMap and
// derives the comfort warnings the bot nags the group with.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/seojinp/moyeora/pkg/logger"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Report is the weather summary the presentation layer renders.
type Report struct {
	City        string
	Description string
	Temp        int
	FeelsLike   int
	Humidity    int
	WindSpeed   float64
	Nags        []string
}

// Client talks to the OpenWeatherMap current-weather endpoint.
type Client struct {
	apiKey      string
	baseURL     string
	units       string
	lang        string
	defaultCity string
	httpClient  *http.Client
	logger      *logger.Logger
}

// New creates a weather client. An empty apiKey yields a client whose
// Current always fails; callers gate on Enabled.
func New(apiKey, defaultCity, units, lang string) *Client {
	if defaultCity == "" {
		defaultCity = "Seoul"
	}
	if units == "" {
		units = "metric"
	}
	if lang == "" {
		lang = "kr"
	}
	return &Client{
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		units:       units,
		lang:        lang,
		defaultCity: defaultCity,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger.New("weather"),
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = base
}

type owmResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Current fetches the current weather for city (the default city when
// empty).
func (c *Client) Current(ctx context.Context, city string) (*Report, error) {
	if !c.Enabled() {
		return nil, errors.New("weather API key not configured")
	}
	if city == "" {
		city = c.defaultCity
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", c.units)
	q.Set("lang", c.lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build weather request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch weather")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("weather API error: %s", resp.Status)
	}

	var w owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		return nil, errors.Wrap(err, "decode weather response")
	}

	desc := "weather"
	if len(w.Weather) > 0 {
		desc = w.Weather[0].Description
	}

	report := &Report{
		City:        w.Name,
		Description: desc,
		Temp:        int(math.Round(w.Main.Temp)),
		FeelsLike:   int(math.Round(w.Main.FeelsLike)),
		Humidity:    w.Main.Humidity,
		WindSpeed:   w.Wind.Speed,
		Nags:        nags(w.Main.FeelsLike, w.Main.Humidity, w.Wind.Speed),
	}

	c.logger.Info("Weather for %s: %s, %d°C (feels %d°C)", report.City, desc, report.Temp, report.FeelsLike)
	return report, nil
}

// nags turns raw conditions into the grandmotherly warnings attached to
// every report.
func nags(feels float64, humidity int, wind float64) []string {
	var out []string
	switch {
	case feels <= 0:
		out = append(out, "체감이 영하다. 옷 얇게 입고 나가면 안 된다.")
	case feels <= 8:
		out = append(out, "쌀쌀하다. 겉옷 하나 챙겨라.")
	case feels >= 28:
		out = append(out, "덥다. 물 안 챙기면 고생한다.")
	}
	if humidity >= 75 {
		out = append(out, "습하다. 머리 부스스해도 어쩔 수 없다.")
	}
	if wind >= 6 {
		out = append(out, "바람 센 편이다. 모자 쓰면 날아간다.")
	}
	return out
}

// String renders the report as a single chat-friendly line plus nags.
func (r *Report) String() string {
	base := fmt.Sprintf("지금 %s 날씨다: %s, %d°C (체감 %d°C), 습도 %d%%, 바람 %.1f m/s",
		r.City, r.Description, r.Temp, r.FeelsLike, r.Humidity, r.WindSpeed)
	if len(r.Nags) == 0 {
		return base + "\n별일 없다. 그래도 조심해서 다녀라."
	}
	for _, n := range r.Nags {
		base += "\n" + n
	}
	return base
}
