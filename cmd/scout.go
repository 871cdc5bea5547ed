package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/leadscout/emailscout/internal/model"
	"github.com/leadscout/emailscout/internal/pipeline"
	"github.com/leadscout/emailscout/internal/validate"
	"github.com/leadscout/emailscout/pkg/serpapi"
)

var (
	scoutCompany   string
	scoutLocation  string
	scoutSuffix    string
	scoutSeparator string
	scoutPages     int
	scoutRolesFile string
)

var scoutCmd = &cobra.Command{
	Use:   "scout",
	Short: "Search, derive and validate emails for one company",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.SerpAPI.Key == "" {
			return eris.New("serpapi key is not configured (EMAILSCOUT_SERPAPI_KEY)")
		}

		if scoutRolesFile != "" {
			roles, err := loadRoles(scoutRolesFile)
			if err != nil {
				return err
			}
			cfg.Search.Roles = roles
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		serpClient := serpapi.NewClient(cfg.SerpAPI.Key,
			serpapi.WithBaseURL(cfg.SerpAPI.BaseURL),
			serpapi.WithRateLimit(cfg.SerpAPI.RateLimit),
		)

		progress := func(fraction float64) {
			fmt.Fprintf(os.Stderr, "\rprogress: %3.0f%%", fraction*100)
		}

		scout := pipeline.NewScout(cfg, st, serpClient, validate.NewNetResolver(), progress)

		target := model.Target{
			Company:  scoutCompany,
			Location: scoutLocation,
			Pages:    scoutPages,
			Convention: model.NamingConvention{
				Separator:    scoutSeparator,
				DomainSuffix: scoutSuffix,
			},
		}
		if target.Convention.Separator == "" {
			target.Convention.Separator = cfg.Convention.Separator
		}

		run, rows, err := scout.Run(ctx, target)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return eris.Wrap(err, "scout run")
		}

		zap.L().Info("scout complete",
			zap.String("run_id", run.ID),
			zap.Int("emails_generated", len(rows)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	},
}

func init() {
	scoutCmd.Flags().StringVar(&scoutCompany, "company", "", "company name (required)")
	scoutCmd.Flags().StringVar(&scoutLocation, "location", "", "location city (required)")
	scoutCmd.Flags().StringVar(&scoutSuffix, "suffix", "", `email domain suffix, e.g. "@acme.com" (required)`)
	scoutCmd.Flags().StringVar(&scoutSeparator, "separator", "", `first-last separator ("." or "_")`)
	scoutCmd.Flags().IntVar(&scoutPages, "pages", 0, "number of search pages (default from config)")
	scoutCmd.Flags().StringVar(&scoutRolesFile, "roles-file", "", "YAML file overriding the role keywords")
	_ = scoutCmd.MarkFlagRequired("company")
	_ = scoutCmd.MarkFlagRequired("location")
	_ = scoutCmd.MarkFlagRequired("suffix")
	rootCmd.AddCommand(scoutCmd)
}

// loadRoles reads the role keyword list used in the search query's OR
// clause from a YAML file.
func loadRoles(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read roles file %s", path)
	}

	var doc struct {
		Roles []string `yaml:"roles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "parse roles file %s", path)
	}
	if len(doc.Roles) == 0 {
		return nil, eris.Errorf("roles file %s lists no roles", path)
	}
	return doc.Roles, nil
}
