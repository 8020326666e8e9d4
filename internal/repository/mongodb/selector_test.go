package mongodb

import (
	"reflect"
	"testing"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func TestSelectFromDiscovered(t *testing.T) {
	tests := []struct {
		name       string
		discovered []string
		allowList  []string
		want       []string
	}{
		{
			name:       "allow-list intersects discovered",
			discovered: []string{"traces", "events"},
			allowList:  []string{"traces"},
			want:       []string{"traces"},
		},
		{
			name:       "no allow-list returns all non-system",
			discovered: []string{"traces", "system.views", "events"},
			allowList:  nil,
			want:       []string{"traces", "events"},
		},
		{
			name:       "unknown configured names are skipped",
			discovered: []string{"traces"},
			allowList:  []string{"missing", "traces"},
			want:       []string{"traces"},
		},
		{
			name:       "allow-list order wins",
			discovered: []string{"a", "b", "c"},
			allowList:  []string{"c", "a"},
			want:       []string{"c", "a"},
		},
		{
			name:       "nothing discovered",
			discovered: nil,
			allowList:  nil,
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectFromDiscovered(tt.discovered, tt.allowList, nopLogger{})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("selectFromDiscovered() = %v, want %v", got, tt.want)
			}
		})
	}
}
