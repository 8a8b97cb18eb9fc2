package transform

// Calculation is one derived metric over named numeric fields of the
// input.
type Calculation struct {
	Name      string   `json:"name"`
	Operation string   `json:"operation"`
	Fields    []string `json:"fields"`
}

// CalculateMetrics evaluates each calculation against the input data. An
// unknown operation, wrong arity, or non-numeric field produces a nil
// result for that calculation; the rest still run. Absent fields count
// as zero, matching lenient spreadsheet-style semantics.
func CalculateMetrics(input map[string]any, calculations []Calculation) map[string]any {
	results := make(map[string]any, len(calculations))

	for _, calc := range calculations {
		name := calc.Name
		if name == "" {
			name = "unknown"
		}

		values, ok := numericFields(input, calc.Fields)
		if !ok {
			results[name] = nil
			continue
		}

		switch {
		case calc.Operation == "subtract" && len(values) == 2:
			results[name] = values[0] - values[1]
		case calc.Operation == "add" && len(values) >= 2:
			results[name] = sum(values)
		case calc.Operation == "average" && len(values) >= 2:
			results[name] = sum(values) / float64(len(values))
		case calc.Operation == "max" && len(values) >= 2:
			results[name] = maxOf(values)
		case calc.Operation == "min" && len(values) >= 2:
			results[name] = minOf(values)
		default:
			results[name] = nil
		}
	}
	return results
}

func numericFields(input map[string]any, fields []string) ([]float64, bool) {
	values := make([]float64, 0, len(fields))
	for _, field := range fields {
		raw, ok := input[field]
		if !ok {
			values = append(values, 0)
			continue
		}
		number, ok := asFloat(raw)
		if !ok {
			return nil, false
		}
		values = append(values, number)
	}
	return values, true
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func maxOf(values []float64) float64 {
	result := values[0]
	for _, v := range values[1:] {
		if v > result {
			result = v
		}
	}
	return result
}

func minOf(values []float64) float64 {
	result := values[0]
	for _, v := range values[1:] {
		if v < result {
			result = v
		}
	}
	return result
}
