package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func columnsCmd() *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "columns",
		Short: "List columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			if size == 0 {
				size = cfg.PageSize
			}

			list, err := store.FetchColumns(cmd.Context(), page, size)
			if err != nil {
				return err
			}
			if list != nil {
				info("%d columns total, page %d", list.Count, list.CurrentPage)
			}

			for _, c := range store.Columns() {
				fmt.Printf("%-26s %s\n", c.ID, c.Title)
				if c.Description != "" {
					info("%s", c.Description)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&size, "size", 0, "page size (default from config)")
	return cmd
}

func postsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "posts <column-id>",
		Short: "List the posts of a column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			cid := args[0]

			if _, err := store.FetchColumn(cmd.Context(), cid); err != nil {
				return err
			}
			if _, err := store.FetchPosts(cmd.Context(), cid); err != nil {
				return err
			}

			if col, ok := store.ColumnByID(cid); ok {
				info("column: %s", col.Title)
			}
			for _, p := range store.PostsByColumn(cid) {
				fmt.Printf("%-26s %s\n", p.ID, p.Title)
				if p.Excerpt != "" {
					info("%s", p.Excerpt)
				}
			}
			return nil
		},
	}
}
