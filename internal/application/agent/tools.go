package agent

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aescanero/climeai/pkg/domain"
)

var unitSchema = map[string]interface{}{
	"type": "string",
	"enum": []string{"celsius", "fahrenheit", "kelvin"},
}

var convertTemperatureTool = domain.Tool{
	Name:        "convert_temperature",
	Description: "Convert a temperature between celsius, fahrenheit and kelvin.",
	Parameters: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"value": map[string]interface{}{"type": "number", "description": "Temperature to convert"},
			"from":  unitSchema,
			"to":    unitSchema,
		},
		"required": []string{"value", "from", "to"},
	},
}

var heatIndexTool = domain.Tool{
	Name:        "heat_index",
	Description: "Compute the apparent temperature (NWS heat index) from air temperature and relative humidity.",
	Parameters: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"temperature": map[string]interface{}{"type": "number", "description": "Air temperature"},
			"unit":        unitSchema,
			"humidity":    map[string]interface{}{"type": "number", "description": "Relative humidity in percent"},
		},
		"required": []string{"temperature", "humidity"},
	},
}

func convertTemperature(ctx context.Context, args map[string]interface{}) (string, error) {
	value, err := numberArg(args, "value")
	if err != nil {
		return "", err
	}
	from, err := unitArg(args, "from", "")
	if err != nil {
		return "", err
	}
	to, err := unitArg(args, "to", "")
	if err != nil {
		return "", err
	}

	kelvin := toKelvin(value, from)
	if kelvin < 0 {
		return "", fmt.Errorf("temperature below absolute zero")
	}

	return fmt.Sprintf("%.2f %s", fromKelvin(kelvin, to), to), nil
}

func heatIndex(ctx context.Context, args map[string]interface{}) (string, error) {
	temp, err := numberArg(args, "temperature")
	if err != nil {
		return "", err
	}
	unit, err := unitArg(args, "unit", "fahrenheit")
	if err != nil {
		return "", err
	}
	rh, err := numberArg(args, "humidity")
	if err != nil {
		return "", err
	}
	if rh < 0 || rh > 100 {
		return "", fmt.Errorf("humidity must be between 0 and 100")
	}

	f := fromKelvin(toKelvin(temp, unit), "fahrenheit")
	hi := heatIndexF(f, rh)
	c := fromKelvin(toKelvin(hi, "fahrenheit"), "celsius")

	return fmt.Sprintf("%.1f°F (%.1f°C)", hi, c), nil
}

// heatIndexF implements the NWS heat index: the simple Steadman formula
// below 80°F, otherwise the Rothfusz regression with its adjustments.
func heatIndexF(t, rh float64) float64 {
	simple := 0.5 * (t + 61.0 + (t-68.0)*1.2 + rh*0.094)
	if (simple+t)/2 < 80 {
		return simple
	}

	hi := -42.379 + 2.04901523*t + 10.14333127*rh -
		0.22475541*t*rh - 0.00683783*t*t - 0.05481717*rh*rh +
		0.00122874*t*t*rh + 0.00085282*t*rh*rh - 0.00000199*t*t*rh*rh

	switch {
	case rh < 13 && t >= 80 && t <= 112:
		hi -= ((13 - rh) / 4) * math.Sqrt((17-math.Abs(t-95))/17)
	case rh > 85 && t >= 80 && t <= 87:
		hi += ((rh - 85) / 10) * ((87 - t) / 5)
	}
	return hi
}

func toKelvin(v float64, unit string) float64 {
	switch unit {
	case "celsius":
		return v + 273.15
	case "fahrenheit":
		return (v-32)*5/9 + 273.15
	default:
		return v
	}
}

func fromKelvin(k float64, unit string) float64 {
	switch unit {
	case "celsius":
		return k - 273.15
	case "fahrenheit":
		return (k-273.15)*9/5 + 32
	default:
		return k
	}
}

func numberArg(args map[string]interface{}, name string) (float64, error) {
	switch v := args[name].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("argument %s is not a number: %q", name, v)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("missing argument: %s", name)
	default:
		return 0, fmt.Errorf("argument %s has unsupported type %T", name, v)
	}
}

func unitArg(args map[string]interface{}, name, fallback string) (string, error) {
	raw, ok := args[name].(string)
	if !ok || raw == "" {
		if fallback != "" {
			return fallback, nil
		}
		return "", fmt.Errorf("missing argument: %s", name)
	}

	switch u := strings.ToLower(strings.TrimSpace(raw)); u {
	case "c", "celsius":
		return "celsius", nil
	case "f", "fahrenheit":
		return "fahrenheit", nil
	case "k", "kelvin":
		return "kelvin", nil
	default:
		return "", fmt.Errorf("unsupported unit: %s", raw)
	}
}
