package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/quill/internal/apiclient"
	"github.com/dyluth/quill/internal/filter"
	"github.com/dyluth/quill/internal/listing"
	"github.com/dyluth/quill/internal/printer"
	"github.com/dyluth/quill/internal/resolver"
	"github.com/dyluth/quill/internal/timespec"
	"github.com/dyluth/quill/pkg/posts"
)

var (
	listOutputFormat string
	listQuery        string
	listTag          string
	listSince        string
	listUntil        string
	listSort         string
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Manage blog posts on a running server",
	Long: `List, inspect and edit posts through the REST API.

The target server is set with --server or QUILL_SERVER
(default ` + apiclient.DefaultBaseURL + `).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts with optional search and filters",
	Long: `List every post, newest first, then filter and sort locally.

Search:
  --query  - Case-insensitive match over title, excerpt, body and #tags
             ("#go" matches posts tagged go)
  --tag    - Exact tag match

Time Filters:
  --since  - Show posts created after this time
  --until  - Show posts created before this time

Output Formats:
  default - Table with ID, age, tags and title
  jsonl   - Line-delimited JSON, one post per line

Examples:
  quill posts list --query="#go" --sort=oldest
  quill posts list --since=7d --output=jsonl | jq .title`,
	Args: cobra.NoArgs,
	RunE: runPostsList,
}

var postsGetCmd = &cobra.Command{
	Use:   "get POST_ID",
	Short: "Show one post as JSON (short IDs accepted)",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostsGet,
}

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a post",
	Example: `  quill posts create --title "Hello" --body "First post" --tags "go,blog"`,
	Args:  cobra.NoArgs,
	RunE:  runPostsCreate,
}

var postsUpdateCmd = &cobra.Command{
	Use:   "update POST_ID",
	Short: "Replace a post's title and body",
	Long: `Replace a post's title and body. Excerpt and tags are replaced only when
their flags are given; otherwise the stored values are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runPostsUpdate,
}

var postsPatchCmd = &cobra.Command{
	Use:   "patch POST_ID",
	Short: "Change selected fields of a post",
	Long: `Send only the fields whose flags are given. At least one of --title or
--body is required.`,
	Args: cobra.ExactArgs(1),
	RunE: runPostsPatch,
}

var postsDeleteCmd = &cobra.Command{
	Use:   "delete POST_ID",
	Short: "Delete a post",
	Args:  cobra.ExactArgs(1),
	RunE:  runPostsDelete,
}

func init() {
	postsListCmd.Flags().StringVarP(&listOutputFormat, "output", "o", "default", "Output format: default or jsonl")
	postsListCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Search title, excerpt, body and #tags")
	postsListCmd.Flags().StringVar(&listTag, "tag", "", "Only posts with this tag")
	postsListCmd.Flags().StringVar(&listSince, "since", "", "Show posts after time (duration, Nd or RFC3339)")
	postsListCmd.Flags().StringVar(&listUntil, "until", "", "Show posts before time (duration, Nd or RFC3339)")
	postsListCmd.Flags().StringVar(&listSort, "sort", string(filter.SortNewest), "Sort order: newest, oldest or title")

	// Each write command owns its flags; values are read back from cmd.Flags().
	for _, c := range []*cobra.Command{postsCreateCmd, postsUpdateCmd, postsPatchCmd} {
		c.Flags().String("title", "", "Post title")
		c.Flags().String("body", "", "Post body")
		c.Flags().String("excerpt", "", "Short summary")
		c.Flags().String("tags", "", "Comma-separated tags")
	}

	postsCmd.AddCommand(postsListCmd, postsGetCmd, postsCreateCmd, postsUpdateCmd, postsPatchCmd, postsDeleteCmd)
	rootCmd.AddCommand(postsCmd)
}

func runPostsList(cmd *cobra.Command, args []string) error {
	format, err := listing.ParseOutputFormat(listOutputFormat)
	if err != nil {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", listOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}

	sortMode, err := filter.ParseSortMode(listSort)
	if err != nil {
		return printer.Error(
			"invalid sort order",
			err.Error(),
			[]string{"Valid orders: newest, oldest, title"},
		)
	}

	now := time.Now()
	since, until, err := timespec.ParseRange(listSince, listUntil, now)
	if err != nil {
		return printer.Error(
			"invalid time filter",
			err.Error(),
			[]string{"Use a duration (2h, 7d) or a timestamp (2026-01-02T15:04:05Z)"},
		)
	}

	client, err := newClient()
	if err != nil {
		return invalidServerError(err)
	}

	criteria := &filter.Criteria{Since: since, Until: until, Tag: listTag, Query: listQuery}
	_, err = listing.ListPosts(cmd.Context(), client, listing.Options{
		Format:   format,
		Criteria: criteria,
		Sort:     sortMode,
		Now:      now,
	}, printer.Stdout)
	if err != nil {
		return requestError(client, err)
	}
	return nil
}

func runPostsGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient()
	if err != nil {
		return invalidServerError(err)
	}

	fullID, err := resolvePostID(ctx, client, args[0])
	if err != nil {
		return err
	}

	if err := listing.GetPost(ctx, client, fullID, apiclient.IsNotFound, printer.Stdout); err != nil {
		if listing.IsNotFound(err) {
			return printer.Error(
				fmt.Sprintf("post with ID '%s' not found", fullID),
				"The post was resolved but could not be fetched. It may have just been deleted.",
				[]string{"List all posts:\n  quill posts list"},
			)
		}
		return requestError(client, err)
	}
	return nil
}

func runPostsCreate(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return invalidServerError(err)
	}

	p, err := client.Create(cmd.Context(), inputFromFlags(cmd))
	if err != nil {
		return writeError(client, err)
	}
	printer.Success("Created post %s\n", p.ID)
	return printer.JSON(p)
}

func runPostsUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient()
	if err != nil {
		return invalidServerError(err)
	}

	id, err := resolvePostID(ctx, client, args[0])
	if err != nil {
		return err
	}

	p, err := client.Update(ctx, id, inputFromFlags(cmd))
	if err != nil {
		return writeError(client, err)
	}
	printer.Success("Updated post %s\n", p.ID)
	return printer.JSON(p)
}

func runPostsPatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient()
	if err != nil {
		return invalidServerError(err)
	}

	id, err := resolvePostID(ctx, client, args[0])
	if err != nil {
		return err
	}

	p, err := client.Patch(ctx, id, patchFromFlags(cmd))
	if err != nil {
		return writeError(client, err)
	}
	printer.Success("Patched post %s\n", p.ID)
	return printer.JSON(p)
}

func runPostsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := newClient()
	if err != nil {
		return invalidServerError(err)
	}

	id, err := resolvePostID(ctx, client, args[0])
	if err != nil {
		return err
	}

	removed, err := client.Delete(ctx, id)
	if err != nil {
		return writeError(client, err)
	}
	printer.Success("Deleted post %s (%q)\n", removed.ID, removed.Title)
	return nil
}

// changedFlag returns a pointer to the named flag's value, or nil when the
// user did not set it on this invocation.
func changedFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// inputFromFlags builds a full-replace payload. Excerpt and tags are only
// sent when their flags were given so the server keeps stored values.
func inputFromFlags(cmd *cobra.Command) posts.Input {
	title, _ := cmd.Flags().GetString("title")
	body, _ := cmd.Flags().GetString("body")

	in := posts.Input{Title: title, Body: body, Excerpt: changedFlag(cmd, "excerpt")}
	if tags := changedFlag(cmd, "tags"); tags != nil {
		in.Tags = posts.TagsOf(*tags)
	}
	return in
}

func patchFromFlags(cmd *cobra.Command) posts.Patch {
	patch := posts.Patch{
		Title:   changedFlag(cmd, "title"),
		Body:    changedFlag(cmd, "body"),
		Excerpt: changedFlag(cmd, "excerpt"),
	}
	if tags := changedFlag(cmd, "tags"); tags != nil {
		patch.Tags = posts.TagsOf(*tags)
	}
	return patch
}

// resolvePostID expands a short ID, rendering resolver failures for the user.
func resolvePostID(ctx context.Context, client *apiclient.Client, shortID string) (string, error) {
	fullID, err := resolver.ResolvePostID(ctx, client, shortID, apiclient.IsNotFound)
	if err == nil {
		return fullID, nil
	}

	if resolver.IsNotFoundError(err) {
		return "", printer.Error(
			fmt.Sprintf("post with ID '%s' not found", shortID),
			"No post on the server matches that ID.",
			[]string{
				"List all posts:\n  quill posts list",
				fmt.Sprintf("Check the target server:\n  quill status --server %s", client.BaseURL()),
			},
		)
	}
	if resolver.IsAmbiguousError(err) {
		var ambigErr *resolver.AmbiguousError
		errors.As(err, &ambigErr)
		fmt.Fprintln(printer.Stderr, resolver.FormatAmbiguousError(ambigErr))
		return "", fmt.Errorf("ambiguous short ID")
	}
	if errors.Is(err, resolver.ErrShortIDTooShort) {
		return "", printer.Error(
			"invalid post ID",
			err.Error(),
			[]string{"Use at least 6 characters of the ID, or the full UUID"},
		)
	}
	return "", requestError(client, err)
}

// writeError renders a failed create/update/patch/delete.
func writeError(client *apiclient.Client, err error) error {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiclient.IsBadRequest(err):
			return printer.Error(
				"post rejected",
				apiErr.Message,
				[]string{"Provide --title and --body (patch needs at least one of them)"},
			)
		case apiclient.IsNotFound(err):
			return printer.Error(
				"post not found",
				apiErr.Message,
				[]string{"List all posts:\n  quill posts list"},
			)
		}
	}
	return requestError(client, err)
}

// requestError renders transport and server failures.
func requestError(client *apiclient.Client, err error) error {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return printer.ErrorWithContext(
			"request failed",
			apiErr.Message,
			[][2]string{{"Server", client.BaseURL()}, {"Status", fmt.Sprintf("%d", apiErr.Status)}},
			[]string{"Check the server logs"},
		)
	}
	return printer.ErrorWithContext(
		"could not reach quill server",
		err.Error(),
		[][2]string{{"Server", client.BaseURL()}},
		[]string{
			"Start the server:\n  quill serve",
			"Point at another server:\n  quill posts list --server http://host:3000",
		},
	)
}

func invalidServerError(err error) error {
	return printer.Error(
		"invalid server URL",
		err.Error(),
		[]string{fmt.Sprintf("Use a full URL, e.g. --server %s", apiclient.DefaultBaseURL)},
	)
}
