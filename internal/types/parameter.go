package types

import "fmt"

// ParameterKey identifies a measured quantity
type ParameterKey string

const (
	Rainfall       ParameterKey = "rainfall"
	TemperatureMax ParameterKey = "temperature_max"
	TemperatureMin ParameterKey = "temperature_min"
	Humidity       ParameterKey = "humidity"
	Evaporation    ParameterKey = "evaporation"
	WindSpeed      ParameterKey = "wind_speed"
	Sunshine       ParameterKey = "sunshine"
)

// ChartStyle selects how a parameter's series are drawn
type ChartStyle string

const (
	ChartStyleLine ChartStyle = "line"
	ChartStyleBar  ChartStyle = "bar"
)

// Parameter describes one entry of the fixed parameter catalogue
type Parameter struct {
	Key   ParameterKey `json:"key"`
	Label string       `json:"label"`
	Unit  string       `json:"unit"`
	Table string       `json:"-"`
	Style ChartStyle   `json:"style"`
}

// catalogue is ordered; Parameters() preserves this order
var catalogue = []Parameter{
	{Key: Rainfall, Label: "Rainfall", Unit: "mm", Table: "rainfall_monthly", Style: ChartStyleBar},
	{Key: TemperatureMax, Label: "Maximum Temperature", Unit: "°C", Table: "temperature_max_monthly", Style: ChartStyleLine},
	{Key: TemperatureMin, Label: "Minimum Temperature", Unit: "°C", Table: "temperature_min_monthly", Style: ChartStyleLine},
	{Key: Humidity, Label: "Relative Humidity", Unit: "%", Table: "humidity_monthly", Style: ChartStyleLine},
	{Key: Evaporation, Label: "Evaporation", Unit: "mm", Table: "evaporation_monthly", Style: ChartStyleLine},
	{Key: WindSpeed, Label: "Wind Speed", Unit: "m/s", Table: "wind_speed_monthly", Style: ChartStyleLine},
	{Key: Sunshine, Label: "Sunshine Duration", Unit: "h", Table: "sunshine_monthly", Style: ChartStyleLine},
}

var catalogueByKey = func() map[ParameterKey]Parameter {
	m := make(map[ParameterKey]Parameter, len(catalogue))
	for _, p := range catalogue {
		m[p.Key] = p
	}
	return m
}()

// Parameters returns the full parameter catalogue in display order
func Parameters() []Parameter {
	out := make([]Parameter, len(catalogue))
	copy(out, catalogue)
	return out
}

// LookupParameter returns the catalogue entry for key
func LookupParameter(key ParameterKey) (Parameter, error) {
	p, ok := catalogueByKey[key]
	if !ok {
		return Parameter{}, fmt.Errorf("unknown parameter %q", key)
	}
	return p, nil
}

// MustParameter is LookupParameter for keys known to be valid
func MustParameter(key ParameterKey) Parameter {
	p, err := LookupParameter(key)
	if err != nil {
		panic(err)
	}
	return p
}
