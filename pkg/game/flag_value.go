package game

import (
	"math"
	"reflect"
	"strconv"

	"gopkg.in/yaml.v3"
)

// normalizeFlag 把标记值规整为读档后得到的形式
//
// 整数统一为 int，浮点统一为 float64，切片和字符串键映射递归复制为
// []any / map[string]any，其余类型原样保留。
func normalizeFlag(v any) any {
	switch x := v.(type) {
	case nil, bool, string, int, float64:
		return v
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = normalizeFlag(e)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = normalizeFlag(e)
		}
		return s
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Slice, reflect.Array:
		s := make([]any, rv.Len())
		for i := range s {
			s[i] = normalizeFlag(rv.Index(i).Interface())
		}
		return s
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = normalizeFlag(iter.Value().Interface())
		}
		return m
	}
	return v
}

// encodeFlag 为存档准备标记值
// 整数值的浮点数写成带 !!float 标签的标量，读回时仍是 float64
func encodeFlag(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) || x != math.Trunc(x) {
			return x
		}
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!float",
			Value: strconv.FormatFloat(x, 'f', 1, 64),
		}
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = encodeFlag(e)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = encodeFlag(e)
		}
		return s
	}
	return v
}
