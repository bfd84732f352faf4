package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pillar-dev/pillar/pkg/api"
)

func postCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Read and write individual posts",
	}
	cmd.AddCommand(
		postGetCmd(),
		postCreateCmd(),
		postUpdateCmd(),
		postDeleteCmd(),
	)
	return cmd
}

func postGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <post-id>",
		Short: "Show a post with its content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(cmd.Context())
			if err != nil {
				return err
			}

			p, err := store.FetchPost(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s\n\n", p.Title)
			if p.Content != "" {
				fmt.Println(p.Content)
			}
			info("column: %s", p.Column)
			if p.Author != nil {
				info("author: %s", p.Author.ID)
			}
			return nil
		},
	}
}

func postCreateCmd() *cobra.Command {
	var title, excerpt, content, column string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post in a column",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" || column == "" {
				return fmt.Errorf("both --title and --column are required")
			}

			store, _, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			if store.Token() == "" {
				return fmt.Errorf("not logged in; run 'pillar login' first")
			}

			p, err := store.CreatePost(cmd.Context(), api.NewPost{
				Title:   title,
				Excerpt: excerpt,
				Content: content,
				Column:  column,
				Author:  store.User().ID,
			})
			if err != nil {
				return err
			}

			success("created post %s", p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "post title")
	cmd.Flags().StringVar(&excerpt, "excerpt", "", "short summary")
	cmd.Flags().StringVar(&content, "content", "", "post body")
	cmd.Flags().StringVar(&column, "column", "", "owning column id")
	return cmd
}

func postUpdateCmd() *cobra.Command {
	var title, excerpt, content string

	cmd := &cobra.Command{
		Use:   "update <post-id>",
		Short: "Update fields of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" && excerpt == "" && content == "" {
				return fmt.Errorf("nothing to update; pass --title, --excerpt or --content")
			}

			store, _, err := openStore(cmd.Context())
			if err != nil {
				return err
			}

			p, err := store.UpdatePost(cmd.Context(), args[0], api.PostPatch{
				Title:   title,
				Excerpt: excerpt,
				Content: content,
			})
			if err != nil {
				return err
			}

			success("updated post %s", p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&excerpt, "excerpt", "", "new summary")
	cmd.Flags().StringVar(&content, "content", "", "new body")
	return cmd
}

func postDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(cmd.Context())
			if err != nil {
				return err
			}

			p, err := store.DeletePost(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			success("deleted post %s (%s)", p.ID, p.Title)
			return nil
		},
	}
}
