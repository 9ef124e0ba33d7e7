package hydrate

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDecoderFromFixtures(t *testing.T) {
	fx := loadFixture(t, "hydrate_settings.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			decoder := NewDecoder[settings](buildOptions(tc)...)

			result, err := decoder.Decode(Context{Scope: tc.Scope}, tc.Input)

			if tc.ExpectErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tc.ExpectErr)
				}
				if !strings.Contains(err.Error(), tc.ExpectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.ExpectErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}

			if !reflect.DeepEqual(tc.Expect, result) {
				t.Fatalf("decoded settings mismatch:\nwant: %#v\n got: %#v", tc.Expect, result)
			}
		})
	}
}

func TestDecodeDoesNotMutatePayload(t *testing.T) {
	payload := map[string]any{"db.host": "a"}
	decoder := NewDecoder[settings](WithPreHook[settings](ExpandDottedKeys))

	if _, err := decoder.Decode(Context{}, payload); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if _, ok := payload["db.host"]; !ok || len(payload) != 1 {
		t.Fatalf("payload was mutated: %#v", payload)
	}
}

func TestDecodeNilPayload(t *testing.T) {
	result, err := NewDecoder[settings]().Decode(Context{}, nil)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if !reflect.DeepEqual(settings{}, result) {
		t.Fatalf("expected zero settings, got %#v", result)
	}
}

func TestExpandDottedKeysRejectsEmptySegment(t *testing.T) {
	_, err := ExpandDottedKeys(Context{}, map[string]any{"db..host": "x"})
	if err == nil || !strings.Contains(err.Error(), "empty segment") {
		t.Fatalf("expected empty segment error, got %v", err)
	}
}

func TestUseNumberKeepsNumericText(t *testing.T) {
	decoder := NewDecoder[map[string]any](WithUseNumber[map[string]any]())

	result, err := decoder.Decode(Context{}, map[string]any{"retries": 3})
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if _, ok := result["retries"].(json.Number); !ok {
		t.Fatalf("expected json.Number, got %T", result["retries"])
	}
}

func buildOptions(tc fixtureCase) []DecoderOption[settings] {
	options := []DecoderOption[settings]{}

	for _, optName := range tc.Options {
		switch optName {
		case "use_number":
			options = append(options, WithUseNumber[settings]())
		case "disallow_unknown":
			options = append(options, WithDisallowUnknownFields[settings]())
		}
	}

	for _, hookName := range tc.PreHooks {
		switch hookName {
		case "expand":
			options = append(options, WithPreHook[settings](ExpandDottedKeys))
		}
	}

	for _, hookName := range tc.PostHooks {
		switch hookName {
		case "ensure_tag":
			options = append(options, WithPostHook[settings](ensureTagPostHook))
		}
	}

	return options
}

func ensureTagPostHook(ctx Context, snapshot *settings) error {
	if snapshot == nil {
		return errors.New("snapshot is nil")
	}
	if len(snapshot.Tags) > 0 {
		return nil
	}
	snapshot.Tags = []string{"scope:" + ctx.Scope}
	return nil
}

type fixture struct {
	Description string        `json:"description"`
	Cases       []fixtureCase `json:"cases"`
}

type fixtureCase struct {
	Name      string         `json:"name"`
	Scope     string         `json:"scope"`
	Input     map[string]any `json:"input"`
	Expect    settings       `json:"expect"`
	ExpectErr string         `json:"expectErr"`
	PreHooks  []string       `json:"preHooks"`
	PostHooks []string       `json:"postHooks"`
	Options   []string       `json:"options"`
}

type settings struct {
	Enabled bool     `json:"enabled"`
	DB      database `json:"db"`
	Limits  limits   `json:"limits"`
	Tags    []string `json:"tags"`
}

type database struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type limits struct {
	Daily   int `json:"daily"`
	Monthly int `json:"monthly"`
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()
	path := filepath.Join("..", "..", "testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read hydrate fixture %q: %v", name, err)
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal hydrate fixture %q: %v", name, err)
	}
	return fx
}
