package config

import (
	"fmt"

	supa "github.com/supabase-community/supabase-go"
)

// NewSupabaseClient prefers the service role key and falls back to the anon
// key, which is subject to row level security.
func NewSupabaseClient(cfg *Config) (*supa.Client, error) {
	key := cfg.SupabaseServiceKey
	if key == "" {
		key = cfg.SupabaseAnonKey
	}
	client, err := supa.NewClient(cfg.SupabaseURL, key, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return client, nil
}
