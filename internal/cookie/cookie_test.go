package cookie

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCookie = "user=alice&authcookie=abc123&preferred-ip=10.0.0.5&portal-userauthcookie=xyz"

func TestFilterIdempotent(t *testing.T) {
	once := Filter(sampleCookie, []string{"preferred-ip"}, false)
	twice := Filter(once, []string{"preferred-ip"}, false)
	assert.Equal(t, once, twice)
}

func TestFilterPartition(t *testing.T) {
	keep := Filter(sampleCookie, []string{"user", "authcookie"}, true)
	drop := Filter(sampleCookie, []string{"user", "authcookie"}, false)

	want := sortedKeys(Parse(sampleCookie))
	got := sortedKeys(append(Parse(keep), Parse(drop)...))
	assert.Equal(t, want, got)
}

func sortedKeys(fields []Field) []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.String()
	}
	sort.Strings(keys)
	return keys
}

func TestFilterDropsPreferredIP(t *testing.T) {
	got := Filter(sampleCookie, []string{"preferred-ip"}, false)
	assert.NotContains(t, got, "preferred-ip")
	assert.Contains(t, got, "user=alice")
	assert.Contains(t, got, "authcookie=abc123")
}

func TestFilterKeepsOnlyUserAndAuthcookie(t *testing.T) {
	got := Filter(sampleCookie, []string{"user", "authcookie"}, true)
	fields := Parse(got)
	require.Len(t, fields, 2)
	names := []string{fields[0].Key, fields[1].Key}
	sort.Strings(names)
	assert.Equal(t, []string{"authcookie", "user"}, names)
}

func TestAppendFilteredSeparatorHygiene(t *testing.T) {
	var buf strings.Builder
	buf.WriteString("client-type=1")
	AppendFiltered(&buf, sampleCookie, []string{"preferred-ip"}, false)
	assert.True(t, strings.Contains(buf.String(), "&user=alice"))
	assert.False(t, strings.Contains(buf.String(), "&&"))

	var buf2 strings.Builder
	buf2.WriteString("path?")
	AppendFiltered(&buf2, sampleCookie, []string{"preferred-ip"}, false)
	assert.False(t, strings.HasPrefix(buf2.String()[len("path?"):], "&"))
}

func TestOptionListGet(t *testing.T) {
	l := OptionList{{Name: "ipaddr", Value: "10.0.0.2"}, {Name: "netmask", Value: "255.255.255.0"}}
	v, ok := l.Get("netmask")
	require.True(t, ok)
	assert.Equal(t, "255.255.255.0", v)

	_, ok = l.Get("missing")
	assert.False(t, ok)
}
