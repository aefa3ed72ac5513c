package chart

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// figure is the part of plotly figure JSON we understand.
type figure struct {
	Data   []trace `json:"data"`
	Layout struct {
		Title title `json:"title"`
	} `json:"layout"`
}

type trace struct {
	Type   string `json:"type"`
	Name   string `json:"name"`
	Mode   string `json:"mode"`
	X      values `json:"x"`
	Y      values `json:"y"`
	Marker struct {
		Color json.RawMessage `json:"color"`
	} `json:"marker"`
}

// kind returns trace type, plotly defaults to scatter.
func (t *trace) kind() string {
	if len(t.Type) == 0 {
		return "scatter"
	}
	return t.Type
}

// color returns single marker color if specified.
func (t *trace) color() string {
	var s string
	if len(t.Marker.Color) > 0 && json.Unmarshal(t.Marker.Color, &s) == nil {
		return s
	}
	return ""
}

// title is either string or {"text": "..."}.
type title string

func (t *title) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*t = title(obj.Text)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = title(s)
	return nil
}

// values holds axis data. Numeric data is kept in nums (NaN for gaps),
// labels always has textual form of every value.
type values struct {
	nums    []float64
	labels  []string
	numeric bool
}

func (v *values) len() int { return len(v.labels) }

func (v *values) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = values{}
		return nil
	}
	if data[0] == '{' {
		nums, err := decodeTyped(data)
		if err != nil {
			return err
		}
		*v = fromNums(nums)
		return nil
	}
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("unable to decode axis values: %w", err)
	}
	res := values{numeric: true, nums: make([]float64, len(items)), labels: make([]string, len(items))}
	for i, it := range items {
		switch x := it.(type) {
		case float64:
			res.nums[i] = x
			res.labels[i] = strconv.FormatFloat(x, 'g', -1, 64)
		case nil:
			res.nums[i] = math.NaN()
		case string:
			res.numeric = false
			res.nums[i] = math.NaN()
			res.labels[i] = x
		default:
			res.numeric = false
			res.nums[i] = math.NaN()
			res.labels[i] = fmt.Sprint(x)
		}
	}
	*v = res
	return nil
}

func fromNums(nums []float64) values {
	res := values{numeric: true, nums: nums, labels: make([]string, len(nums))}
	for i, n := range nums {
		res.labels[i] = strconv.FormatFloat(n, 'g', -1, 64)
	}
	return res
}

// decodeTyped decodes plotly typed array {"dtype": "f8", "bdata": "..."}.
func decodeTyped(data []byte) ([]float64, error) {
	var ta struct {
		DType string `json:"dtype"`
		BData string `json:"bdata"`
	}
	if err := json.Unmarshal(data, &ta); err != nil {
		return nil, fmt.Errorf("unable to decode typed array: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(ta.BData)
	if err != nil {
		return nil, fmt.Errorf("unable to decode typed array data: %w", err)
	}

	size := map[string]int{"i1": 1, "u1": 1, "i2": 2, "u2": 2, "i4": 4, "u4": 4, "f4": 4, "f8": 8}[ta.DType]
	if size == 0 {
		return nil, fmt.Errorf("unsupported typed array dtype %q", ta.DType)
	}
	if len(raw)%size != 0 {
		return nil, fmt.Errorf("typed array of %s has %d bytes", ta.DType, len(raw))
	}

	le := binary.LittleEndian
	res := make([]float64, 0, len(raw)/size)
	for b := raw; len(b) > 0; b = b[size:] {
		var f float64
		switch ta.DType {
		case "i1":
			f = float64(int8(b[0]))
		case "u1":
			f = float64(b[0])
		case "i2":
			f = float64(int16(le.Uint16(b)))
		case "u2":
			f = float64(le.Uint16(b))
		case "i4":
			f = float64(int32(le.Uint32(b)))
		case "u4":
			f = float64(le.Uint32(b))
		case "f4":
			f = float64(math.Float32frombits(le.Uint32(b)))
		case "f8":
			f = math.Float64frombits(le.Uint64(b))
		}
		res = append(res, f)
	}
	return res, nil
}

func parseFigure(spec []byte) (*figure, error) {
	var fig figure
	if err := json.Unmarshal(spec, &fig); err != nil {
		return nil, fmt.Errorf("unable to parse chart specification: %w", err)
	}
	return &fig, nil
}
