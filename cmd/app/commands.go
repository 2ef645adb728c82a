package main

import (
	"social-service/configs"
	"social-service/internal/migrate"
	"social-service/internal/seed"
	"social-service/internal/shared/logx"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configs.LoadConfig()
			if err != nil {
				return err
			}
			log := logx.Setup(logx.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
			d, err := buildDeps(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer d.Close()
			if err := migrate.AutoMigrateAll(d.store); err != nil {
				return err
			}
			log.Info("schema up to date")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var opts seed.Options
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with fake profiles, posts and engagement",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configs.LoadConfig()
			if err != nil {
				return err
			}
			log := logx.Setup(logx.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
			d, err := buildDeps(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer d.Close()
			if err := migrate.AutoMigrateAll(d.store); err != nil {
				return err
			}
			_, err = seed.New(d.profiles, d.posts, d.engagement, log).Run(cmd.Context(), opts)
			return err
		},
	}
	cmd.Flags().IntVar(&opts.Users, "users", 10, "profiles to register")
	cmd.Flags().IntVar(&opts.PostsPerUser, "posts", 5, "posts per profile")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "faker seed, 0 picks a random one")
	return cmd
}
