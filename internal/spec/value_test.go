package spec

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func decodeValue(t *testing.T, src string) Value {
	t.Helper()
	var v Value
	require.NoError(t, yaml.Unmarshal([]byte(src), &v))
	return v
}

func TestValue_DecodeKinds(t *testing.T) {
	t.Parallel()
	cases := []struct {
		src  string
		want Value
	}{
		{"true", Bool(true)},
		{"hello", String("hello")},
		{`"123"`, String("123")},
		{"42", Int(42)},
		{"0x1F", Int(31)},
		{"1.0", Float(1)},
		{"-2.5e3", Float(-2500)},
		{"~", Null()},
		{"2024-01-02", String("2024-01-02")},
		{"[]", Array()},
		{"{}", Object()},
		{"[1, a]", Array(Int(1), String("a"))},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			assert.Equal(t, tc.want, decodeValue(t, tc.src))
		})
	}
}

func TestValue_BigIntegerSurvives(t *testing.T) {
	t.Parallel()
	v := decodeValue(t, "123456789012345678901234567890")
	assert.Equal(t, KindInteger, v.Kind())
	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678901234567890", string(out))
}

func TestValue_WideIntegerLiterals(t *testing.T) {
	t.Parallel()
	cases := []struct {
		src  string
		want string
	}{
		{"-98765432109876543210", "-98765432109876543210"},
		{"+18446744073709551616", "18446744073709551616"},
		{"1_000_000_000_000_000_000_000", "1000000000000000000000000"},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			v := decodeValue(t, tc.src)
			require.Equal(t, KindInteger, v.Kind())
			out, err := json.Marshal(v)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(out))
		})
	}
	assert.Equal(t, KindNumber, decodeValue(t, "1e30").Kind())
}

func TestValue_ObjectOrderAndMerge(t *testing.T) {
	t.Parallel()
	v := decodeValue(t, `
base: &b {z: 1, a: 2}
obj:
  <<: *b
  m: 3
  a: 9
`)
	require.Equal(t, KindObject, v.Kind())
	obj := v.Members()[1].Value
	out, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":9,"m":3}`, string(out))
}

func TestValue_MarshalJSON(t *testing.T) {
	t.Parallel()
	v := Object(
		Member{"b", String("<tag> & co")},
		Member{"a", Array(Float(1), Float(0.5), Null(), Bool(false))},
		Member{"n", Float(math.NaN())},
	)
	out, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"b":"<tag> & co","a":[1.0,0.5,null,false],"n":null}`, string(out))
}

func TestValue_MarshalYAMLKeepsOrder(t *testing.T) {
	t.Parallel()
	v := Object(Member{"zeta", Int(1)}, Member{"alpha", String("yes")}, Member{"f", Float(2)})
	out, err := yaml.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "zeta: 1\nalpha: \"yes\"\nf: 2.0\n", string(out))
	assert.Equal(t, v, decodeValue(t, string(out)))
}

func TestValue_MarshalYAMLQuotesLegacyBooleans(t *testing.T) {
	t.Parallel()
	v := Object(Member{"on", String("off")}, Member{"n", Array(String("Y"), String("yes please"))})
	out, err := yaml.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "\"on\": \"off\"\n\"n\":\n    - \"Y\"\n    - yes please\n", string(out))
	assert.Equal(t, v, decodeValue(t, string(out)))
}

func TestValue_Truthy(t *testing.T) {
	t.Parallel()
	falsy := []Value{Null(), Bool(false), Int(0), Float(0), String(""), Object(), Array()}
	for _, v := range falsy {
		assert.False(t, v.Truthy(), v.Kind().String())
	}
	truthy := []Value{Bool(true), Int(-1), Float(0.1), String(" "), Object(Member{"k", Null()}), Array(Null())}
	for _, v := range truthy {
		assert.True(t, v.Truthy(), v.Kind().String())
	}
}

func TestValue_SelfReferencingAliasFails(t *testing.T) {
	t.Parallel()
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("a: &x [1]\n"), &node))
	seq := node.Content[0].Content[1]
	seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.AliasNode, Alias: seq, Value: "x"})

	var v Value
	assert.Error(t, node.Decode(&v))
}
