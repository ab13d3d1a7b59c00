package cache

import (
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "root path",
			key:  Key{Version: "v1", URL: "/"},
			want: "appcache:v1:/",
		},
		{
			name: "path with query string",
			key:  Key{Version: "v1", URL: "/blog/42?lang=es"},
			want: "appcache:v1:/blog/42?lang=es",
		},
		{
			name: "missing leading slash is normalized",
			key:  Key{Version: "v2", URL: "offline"},
			want: "appcache:v2:/offline",
		},
		{
			name: "different versions give different keys",
			key:  Key{Version: "v2", URL: "/"},
			want: "appcache:v2:/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_Deterministic(t *testing.T) {
	a := Key{Version: "v1", URL: "/icons/192.png"}
	b := Key{Version: "v1", URL: "/icons/192.png"}
	if a.String() != b.String() {
		t.Errorf("identical keys produced different strings: %q vs %q", a.String(), b.String())
	}
}

func TestBucketPrefix(t *testing.T) {
	got := BucketPrefix("v3")
	want := "appcache:v3:"
	if got != want {
		t.Errorf("BucketPrefix() = %q, want %q", got, want)
	}
}
