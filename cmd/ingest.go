package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leads-cli/internal/export"
	"github.com/sells-group/leads-cli/internal/extract"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/pipeline"
	"github.com/sells-group/leads-cli/internal/search"
	"github.com/sells-group/leads-cli/internal/store"
	"github.com/sells-group/leads-cli/internal/trace"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Search for people and store them",
	Long: `Runs a people search against the selected source, extracts candidate profiles,
validates and deduplicates them and upserts people and companies with query attribution.
With --input, profiles are read from a JSON, .csv or .xlsx file instead of searching.`,
	Example: `  leads-cli ingest --terms "CTO,Berlin" --limit 20
  leads-cli ingest --query 'site:linkedin.com/in "Head of Sales" "München"' --source linkedin_people_jina
  leads-cli ingest --input profiles.json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		query, _ := cmd.Flags().GetString("query")
		terms, _ := cmd.Flags().GetStringSlice("terms")
		source, _ := cmd.Flags().GetString("source")
		limit, _ := cmd.Flags().GetInt("limit")
		writeDB, _ := cmd.Flags().GetBool("write-db")
		output, _ := cmd.Flags().GetString("output")
		input, _ := cmd.Flags().GetString("input")
		required, _ := cmd.Flags().GetStringSlice("required")

		if output != "table" && output != "json" {
			return eris.Errorf("ingest: --output must be table or json, got %q", output)
		}
		if input == "" && strings.TrimSpace(query) == "" && len(terms) == 0 {
			return eris.New("ingest: one of --query, --terms or --input is required")
		}
		if len(required) == 0 {
			required = cfg.Extract.RequiredFields
		}

		if source == "" {
			source = search.DefaultSource(cfg.Search.Provider)
		}
		src, err := search.LookupSource(source)
		if err != nil {
			return err
		}
		cfg.Search.Provider = src.Provider

		mode := "ingest"
		if input != "" {
			mode = "store"
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}

		rec, err := trace.New(cfg.Trace)
		if err != nil {
			return err
		}
		defer rec.Close() //nolint:errcheck

		var st store.Store
		if writeDB {
			st, err = openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		assistant, err := extract.NewAssistant(cfg, rec)
		if err != nil {
			return err
		}
		providers := func(ctx context.Context, name string) (search.Provider, error) {
			return search.NewProvider(ctx, cfg, name)
		}
		ing := pipeline.NewIngestor(st, providers, extract.New(assistant), pipeline.Config{
			DefaultSource: source,
			MaxResults:    cfg.Search.MaxResults,
			PhoneRegion:   cfg.Extract.PhoneRegion,
		})

		opts := pipeline.IngestOptions{
			Query:          query,
			Terms:          terms,
			Source:         source,
			Limit:          limit,
			WriteDB:        writeDB,
			RequiredFields: required,
		}

		var res *pipeline.IngestResult
		if input != "" {
			raws, err := readProfiles(input)
			if err != nil {
				return err
			}
			res, err = ing.IngestProfiles(ctx, raws, pipeline.ImportSource, input, opts)
			if err != nil {
				return err
			}
		} else {
			res, err = ing.Run(ctx, opts)
			if err != nil {
				return err
			}
		}

		if output == "json" {
			return writeJSON(cmd.OutOrStdout(), res)
		}
		formatIngestResult(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	ingestCmd.Flags().String("query", "", "full search query (wins over --terms)")
	ingestCmd.Flags().StringSlice("terms", nil, "search terms, quoted and joined under the source's site filter")
	ingestCmd.Flags().String("source", "", "registered search source (default: the people source of search.provider)")
	ingestCmd.Flags().Int("limit", 0, "max results to fetch (default: search.max_results)")
	ingestCmd.Flags().Bool("write-db", true, "persist kept people and companies")
	ingestCmd.Flags().String("output", "table", "output format: table or json")
	ingestCmd.Flags().String("input", "", "ingest profiles from a JSON, .csv or .xlsx file instead of searching")
	ingestCmd.Flags().StringSlice("required", nil, "required raw fields (default: extract.required_fields)")
	rootCmd.AddCommand(ingestCmd)
}

// profileKeys maps accepted JSON keys, including the column-style names of
// older exports, onto raw profile fields.
var profileKeys = map[string]func(r *model.RawProfile, v string){
	"name":             func(r *model.RawProfile, v string) { r.Name = v },
	"contact_name":     func(r *model.RawProfile, v string) { r.Name = v },
	"profile_url":      func(r *model.RawProfile, v string) { r.ProfileURL = v },
	"linkedin_profile": func(r *model.RawProfile, v string) { r.ProfileURL = v },
	"title":            func(r *model.RawProfile, v string) { r.Title = v },
	"position":         func(r *model.RawProfile, v string) { r.Title = v },
	"current_position": func(r *model.RawProfile, v string) { r.Title = v },
	"company":          func(r *model.RawProfile, v string) { r.Company = v },
	"company_domain":   func(r *model.RawProfile, v string) { r.CompanyDomain = v },
	"company_website":  func(r *model.RawProfile, v string) { r.CompanyDomain = v },
	"location":         func(r *model.RawProfile, v string) { r.Location = v },
	"email":            func(r *model.RawProfile, v string) { r.Email = v },
	"phone":            func(r *model.RawProfile, v string) { r.Phone = v },
	"phone_info":       func(r *model.RawProfile, v string) { r.Phone = v },
	"website":          func(r *model.RawProfile, v string) { r.Website = v },
	"website_info":     func(r *model.RawProfile, v string) { r.Website = v },
	"connections":      func(r *model.RawProfile, v string) { r.Connections = v },
	"connection_count": func(r *model.RawProfile, v string) { r.Connections = v },
	"followers":        func(r *model.RawProfile, v string) { r.Followers = v },
	"follower_count":   func(r *model.RawProfile, v string) { r.Followers = v },
	"summary":          func(r *model.RawProfile, v string) { r.Summary = v },
	"info_raw":         func(r *model.RawProfile, v string) { r.Summary = v },
	"lookup_date":      func(r *model.RawProfile, v string) { r.LookupDate = v },
	"source_name":      func(r *model.RawProfile, v string) { r.SourceName = v },
	"source_query":     func(r *model.RawProfile, v string) { r.SourceQuery = v },
}

// readProfiles loads import profiles from a .xlsx sheet, a .csv file or a
// JSON file.
func readProfiles(path string) ([]model.RawProfile, error) {
	var recs []map[string]string
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx":
		var err error
		if recs, err = export.ReadRecords(path); err != nil {
			return nil, eris.Wrapf(err, "ingest: read %s", path)
		}
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: read %s", path)
		}
		defer f.Close() //nolint:errcheck
		if recs, err = export.ReadCSVRecords(f); err != nil {
			return nil, eris.Wrapf(err, "ingest: parse %s", path)
		}
	}
	if ext == ".xlsx" || ext == ".csv" {
		records := make([]map[string]any, len(recs))
		for i, rec := range recs {
			records[i] = make(map[string]any, len(rec))
			for k, v := range rec {
				records[i][k] = v
			}
		}
		return profilesFromRecords(records), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", path)
	}
	raws, err := decodeProfiles(data)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: parse %s", path)
	}
	return raws, nil
}

// decodeProfiles reads either a JSON array of profiles or an object with a
// "profiles" array.
func decodeProfiles(data []byte) ([]model.RawProfile, error) {
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		var wrapped struct {
			Profiles []map[string]any `json:"profiles"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, eris.Wrap(err, "decode profiles")
		}
		records = wrapped.Profiles
	}
	return profilesFromRecords(records), nil
}

// profilesFromRecords maps keyed records onto raw profiles. Keys are matched
// case-insensitively and unknown keys are ignored. A first_name/last_name
// pair, as written by export, is joined into the name.
func profilesFromRecords(records []map[string]any) []model.RawProfile {
	out := make([]model.RawProfile, 0, len(records))
	for _, rec := range records {
		var raw model.RawProfile
		var first, last string
		for k, v := range rec {
			s := scalar(v)
			if s == "" {
				continue
			}
			switch key := strings.ToLower(strings.TrimSpace(k)); key {
			case "first_name":
				first = s
			case "last_name":
				last = s
			default:
				if set, ok := profileKeys[key]; ok {
					set(&raw, s)
				}
			}
		}
		if raw.Name == "" {
			raw.Name = strings.TrimSpace(first + " " + last)
		}
		out = append(out, raw)
	}
	return out
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode output")
	}
	return nil
}
