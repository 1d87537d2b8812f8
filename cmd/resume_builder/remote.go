package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/backend"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/parsing"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the resume backend",
	Long:  "Authenticates against the REST backend and keeps the bearer token in the storage directory.",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored bearer token",
	RunE:  runLogout,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List resumes stored on the backend",
	RunE:  runList,
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload a resume to the backend",
	Long:  "Creates a stored resume, or with --id replaces the content (and optionally the title) of an existing one.",
	RunE:  runPush,
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download a stored resume",
	RunE:  runPull,
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a stored resume",
	RunE:  runDelete,
}

var (
	loginEmail    string
	loginPassword string
	pushInput     string
	pushTitle     string
	remoteID      string
	pullOutput    string
)

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (required)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (default from RESUME_PASSWORD)")
	pushCmd.Flags().StringVarP(&pushInput, "in", "i", "", "Path to resume JSON file, or - for stdin (required)")
	pushCmd.Flags().StringVar(&pushTitle, "title", "", "Resume title (required when creating)")
	pushCmd.Flags().StringVar(&remoteID, "id", "", "ID of the stored resume")
	pullCmd.Flags().StringVar(&remoteID, "id", "", "ID of the stored resume (required)")
	pullCmd.Flags().StringVarP(&pullOutput, "out", "o", "", "Output file (default stdout)")
	deleteCmd.Flags().StringVar(&remoteID, "id", "", "ID of the stored resume (required)")

	for cmd, flag := range map[*cobra.Command]string{
		loginCmd:  "email",
		pushCmd:   "in",
		pullCmd:   "id",
		deleteCmd: "id",
	} {
		if err := cmd.MarkFlagRequired(flag); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", flag, err))
		}
	}

	rootCmd.AddCommand(loginCmd, logoutCmd, listCmd, pushCmd, pullCmd, deleteCmd)
}

func newBackendClient() (*backend.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	return backend.New(cfg.BackendURL, store), nil
}

// backendError turns a missing or rejected session into a hint to log in.
func backendError(err error) error {
	if errors.Is(err, backend.ErrUnauthorized) {
		return fmt.Errorf("%w (run `resume_builder login`)", err)
	}
	return err
}

func parseRemoteID() (uuid.UUID, error) {
	id, err := uuid.Parse(remoteID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid resume ID %q", remoteID)
	}
	return id, nil
}

func runLogin(cmd *cobra.Command, _ []string) error {
	client, err := newBackendClient()
	if err != nil {
		return err
	}

	password := loginPassword
	if password == "" {
		password = os.Getenv("RESUME_PASSWORD")
	}
	if password == "" {
		return fmt.Errorf("--password or RESUME_PASSWORD is required")
	}

	user, err := client.Login(cmd.Context(), loginEmail, password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", user.Name, user.Email)
	return err
}

func runLogout(cmd *cobra.Command, _ []string) error {
	client, err := newBackendClient()
	if err != nil {
		return err
	}
	if err := client.Logout(); err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return err
}

func runList(cmd *cobra.Command, _ []string) error {
	client, err := newBackendClient()
	if err != nil {
		return err
	}

	resumes, err := client.ListResumes(cmd.Context())
	if err != nil {
		return backendError(err)
	}

	if verbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintResumeList(resumes)
		return nil
	}
	for _, r := range resumes {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", r.ID, r.Title, r.FullName); err != nil {
			return err
		}
	}
	return nil
}

func runPush(cmd *cobra.Command, _ []string) error {
	client, err := newBackendClient()
	if err != nil {
		return err
	}

	doc, err := readDocument(pushInput, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("invalid resume: %s", describeParseError(err))
	}

	var record *types.ResumeRecord
	if remoteID == "" {
		if pushTitle == "" {
			return fmt.Errorf("--title is required when creating a resume")
		}
		record, err = client.CreateResume(cmd.Context(), pushTitle, doc)
	} else {
		id, idErr := parseRemoteID()
		if idErr != nil {
			return idErr
		}
		req := &types.UpdateResumeRequest{Content: doc}
		if pushTitle != "" {
			req.Title = &pushTitle
		}
		record, err = client.UpdateResume(cmd.Context(), id, req)
	}
	if err != nil {
		return backendError(err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Stored %q as %s\n", record.Title, record.ID)
	return err
}

func runPull(cmd *cobra.Command, _ []string) error {
	client, err := newBackendClient()
	if err != nil {
		return err
	}
	id, err := parseRemoteID()
	if err != nil {
		return err
	}

	record, err := client.GetResume(cmd.Context(), id)
	if err != nil {
		return backendError(err)
	}
	if record.Content == nil {
		return fmt.Errorf("resume %s has no content", id)
	}

	data, err := parsing.Encode(record.Content)
	if err != nil {
		return err
	}
	return writeOutput(pullOutput, append(data, '\n'), cmd.OutOrStdout())
}

func runDelete(cmd *cobra.Command, _ []string) error {
	client, err := newBackendClient()
	if err != nil {
		return err
	}
	id, err := parseRemoteID()
	if err != nil {
		return err
	}

	if err := client.DeleteResume(cmd.Context(), id); err != nil {
		return backendError(err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	return err
}
