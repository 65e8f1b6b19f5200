package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Points is a question's face value. Authors may use a number or a short
// text label; only numbers take part in timer policies.
type Points struct {
	value   int
	label   string
	numeric bool
}

// NumericPoints builds a numeric face value.
func NumericPoints(v int) Points {
	return Points{value: v, numeric: true}
}

// LabelPoints builds a text face value.
func LabelPoints(label string) Points {
	return Points{label: label}
}

// Number returns the numeric value, if any.
func (p Points) Number() (int, bool) {
	return p.value, p.numeric
}

func (p Points) String() string {
	if p.numeric {
		return strconv.Itoa(p.value)
	}
	return p.label
}

func (p Points) MarshalJSON() ([]byte, error) {
	if p.numeric {
		return []byte(strconv.Itoa(p.value)), nil
	}
	return json.Marshal(p.label)
}

func (p *Points) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = Points{}
		return nil
	}
	if data[0] == '"' {
		var label string
		if err := json.Unmarshal(data, &label); err != nil {
			return err
		}
		*p = LabelPoints(label)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("points: %w", err)
	}
	if v, err := n.Int64(); err == nil && v >= math.MinInt && v <= math.MaxInt {
		*p = NumericPoints(int(v))
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("points: %w", err)
	}
	v, err := integralPoints(f)
	if err != nil {
		return err
	}
	*p = NumericPoints(v)
	return nil
}

// integralPoints accepts whole numbers such as 300.0 that fit in an int.
func integralPoints(f float64) (int, error) {
	if f != math.Trunc(f) || f < math.MinInt || f >= math.MaxInt {
		return 0, fmt.Errorf("points: %v is not a whole number in range", f)
	}
	return int(f), nil
}

func (p Points) MarshalYAML() (interface{}, error) {
	if p.numeric {
		return p.value, nil
	}
	return p.label, nil
}

func (p *Points) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("points: expected scalar at line %d", node.Line)
	}
	switch node.ShortTag() {
	case "!!int":
		var v int
		if err := node.Decode(&v); err != nil {
			return err
		}
		*p = NumericPoints(v)
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return err
		}
		v, err := integralPoints(f)
		if err != nil {
			return fmt.Errorf("%w at line %d", err, node.Line)
		}
		*p = NumericPoints(v)
	case "!!null":
		*p = Points{}
	default:
		*p = LabelPoints(node.Value)
	}
	return nil
}
