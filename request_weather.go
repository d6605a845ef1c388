package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// wrapCurrentWeatherURL builds the OpenWeatherMap current-weather request URL
// for the configured city. Units are always metric.
func (cfg *apiConfig) wrapCurrentWeatherURL() string {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("%s,%s", cfg.city, cfg.countryCode))
	query.Set("units", "metric")
	query.Set("appid", cfg.owmKey)
	return fmt.Sprintf("%s?%s", cfg.owmWeatherURL, query.Encode())
}

// requestCurrentReading fetches the current conditions for the configured
// city from OpenWeatherMap and returns them as a RawReading ready to persist.
func (cfg *apiConfig) requestCurrentReading(ctx context.Context) (RawReading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.wrapCurrentWeatherURL(), nil)
	if err != nil {
		return RawReading{}, fmt.Errorf("could not build weather request: %w", err)
	}

	resp, err := cfg.httpClient.Do(req)
	if err != nil {
		return RawReading{}, fmt.Errorf("could not reach weather provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return RawReading{}, fmt.Errorf("weather provider returned %s", resp.Status)
	}

	reading, err := ParseCurrentWeatherOWM(resp.Body, cfg.city)
	if err != nil {
		return RawReading{}, fmt.Errorf("could not parse weather response: %w", err)
	}
	return reading, nil
}
