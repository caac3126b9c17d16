package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "rwa"
	s.app.Usage = "Real world asset tokenization ledger"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Value: "config.toml",
			Usage: "Path to the TOML config file",
		},
	}
	s.app.Before = s.loadConfig
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Used for start service api, it serves all apis, the asset activation job and metrics.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate database",
			Category:    "Database",
			Description: `Used to create or update the database schema.`,
		},
		{
			Action:   s.startAdmin,
			Name:     "admin",
			Usage:    "Grant the admin role to a user",
			Category: "Tool",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "id", Required: true, Usage: "User principal"},
			},
			Description: `Used to bootstrap the first admin, the user is created if it does not exist.`,
		},
		{
			Action:   s.startToken,
			Name:     "token",
			Usage:    "Issue an access token",
			Category: "Tool",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "id", Required: true, Usage: "User principal"},
			},
			Description: `Used to issue an access token for local development.`,
		},
	}
}
