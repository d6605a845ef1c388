package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// This file parses the OpenWeatherMap current-weather payload into a
// RawReading. Wind speeds arrive in m/s and are converted to km/h; the
// observation timestamp and sun times arrive as Unix seconds.

type ResponseCurrentWeatherOWM struct {
	Coord struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"coord"`
	Weather []struct {
		ID          int32  `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64  `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		TempMin   float64  `json:"temp_min"`
		TempMax   float64  `json:"temp_max"`
		Pressure  int32    `json:"pressure"`
		Humidity  int32    `json:"humidity"`
		SeaLevel  int32    `json:"sea_level"`
		GrndLevel int32    `json:"grnd_level"`
	} `json:"main"`
	Visibility int32 `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   *int32  `json:"deg"`
		Gust  float64 `json:"gust"`
	} `json:"wind"`
	Clouds struct {
		All int32 `json:"all"`
	} `json:"clouds"`
	Dt  int64 `json:"dt"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int32  `json:"timezone"`
	Name     string `json:"name"`
}

const msToKmh = 3.6

// ParseCurrentWeatherOWM decodes an OpenWeatherMap current-weather body into
// a RawReading for the given city.
func ParseCurrentWeatherOWM(body io.Reader, city string) (RawReading, error) {
	var response ResponseCurrentWeatherOWM
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return RawReading{}, err
	}
	if len(response.Weather) == 0 {
		return RawReading{}, fmt.Errorf("response carries no weather condition")
	}

	condition := response.Weather[0]
	reading := RawReading{
		City:               city,
		Timestamp:          time.Unix(response.Dt, 0).UTC(),
		Longitude:          response.Coord.Lon,
		Latitude:           response.Coord.Lat,
		WeatherID:          condition.ID,
		WeatherMain:        condition.Main,
		WeatherDescription: condition.Description,
		WeatherIcon:        condition.Icon,
		TemperatureC:       response.Main.Temp,
		TempMinC:           response.Main.TempMin,
		TempMaxC:           response.Main.TempMax,
		PressureHpa:        response.Main.Pressure,
		Humidity:           response.Main.Humidity,
		SeaLevelHpa:        response.Main.SeaLevel,
		GroundLevelHpa:     response.Main.GrndLevel,
		WindSpeedKmh:       Round(response.Wind.Speed*msToKmh, 2),
		WindGustKmh:        Round(response.Wind.Gust*msToKmh, 2),
		Cloudiness:         response.Clouds.All,
		VisibilityM:        response.Visibility,
		Country:            response.Sys.Country,
		SourceUnix:         response.Dt,
		TimezoneOffsetSec:  response.Timezone,
	}
	// Zero is meaningful for both of these, so absence is tracked rather
	// than inferred from the value.
	if response.Main.FeelsLike != nil {
		reading.FeelsLikeC = sql.NullFloat64{Float64: *response.Main.FeelsLike, Valid: true}
	}
	if response.Wind.Deg != nil {
		reading.WindDirectionDeg = sql.NullInt32{Int32: *response.Wind.Deg, Valid: true}
	}
	if response.Sys.Sunrise > 0 {
		reading.Sunrise = time.Unix(response.Sys.Sunrise, 0).UTC()
	}
	if response.Sys.Sunset > 0 {
		reading.Sunset = time.Unix(response.Sys.Sunset, 0).UTC()
	}
	return reading, nil
}
