package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pillar-dev/pillar/internal/apitest"
	"github.com/pillar-dev/pillar/pkg/api"
)

func mockCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Run an in-memory blog API for local development",
		Long: `Mock starts the same fake API the test suite uses, seeded with a
couple of columns, posts and one account (demo@example.com / demo).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fake := apitest.New()
			seedFixtures(fake)

			info("mock API listening on %s", addr)
			info("login with demo@example.com / demo")
			return http.ListenAndServe(addr, fake)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":7001", "listen address")
	return cmd
}

func seedFixtures(fake *apitest.Server) {
	fake.AddColumn(api.Column{
		ID:          "c-go",
		Title:       "Go in practice",
		Description: "Notes on writing real-world Go",
	})
	fake.AddColumn(api.Column{
		ID:          "c-infra",
		Title:       "Infrastructure diary",
		Description: "Deployment war stories",
	})
	fake.AddPost(api.Post{
		ID:      "p-1",
		Title:   "Errors are values",
		Excerpt: "On wrapping and sentinel errors",
		Content: "The full text of the first post.",
		Column:  "c-go",
	})
	fake.AddPost(api.Post{
		ID:      "p-2",
		Title:   "Contexts everywhere",
		Content: "The full text of the second post.",
		Column:  "c-go",
	})
	fake.AddPost(api.Post{
		ID:      "p-3",
		Title:   "Blue-green by hand",
		Content: "The full text of the third post.",
		Column:  "c-infra",
	})
	fake.AddUser("demo@example.com", "demo", "tok-demo", api.User{
		ID:       "u-demo",
		NickName: "demo",
		Email:    "demo@example.com",
		Column:   "c-go",
	})
}
