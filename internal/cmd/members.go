package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/felixgeelhaar/boss/internal/api"
	"github.com/felixgeelhaar/boss/internal/errors"
	"github.com/felixgeelhaar/boss/internal/tui"
	"github.com/felixgeelhaar/boss/internal/ux"
)

var membersCmd = &cobra.Command{
	Use:     "members",
	Aliases: []string{"member"},
	Short:   "List and manage members",
	Long: `List and manage distributor members.

Examples:
  boss members list --status active --search yamada
  boss members show 42
  boss members update 42 --status suspended --notes "chargeback"
  boss members delete 42 --yes
  boss members stats`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var membersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List members",
	RunE:  protected(runMembersList),
}

var membersShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one member",
	Args:  cobra.ExactArgs(1),
	RunE:  protected(runMembersShow),
}

var membersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a member",
	RunE:  protected(runMembersCreate),
}

var membersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change member fields",
	Long: `Change member fields. Only the flags given are sent.

Examples:
  boss members update 42 --status active
  boss members update 42 --email new@example.com --phone 090-0000-0000`,
	Args: cobra.ExactArgs(1),
	RunE: protected(runMembersUpdate),
}

var membersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a member",
	Args:  cobra.ExactArgs(1),
	RunE:  protected(runMembersDelete),
}

var membersStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show member counters by status",
	RunE:  protected(runMembersStats),
}

// memberUpdateFlags maps update flags to MemberUpdate fields
var memberUpdateFlags = []struct {
	name  string
	usage string
	field func(*api.MemberUpdate) **string
}{
	{"family-name", "family name", func(u *api.MemberUpdate) **string { return &u.FamilyName }},
	{"given-name", "given name", func(u *api.MemberUpdate) **string { return &u.GivenName }},
	{"family-name-kana", "family name reading", func(u *api.MemberUpdate) **string { return &u.FamilyNameKana }},
	{"given-name-kana", "given name reading", func(u *api.MemberUpdate) **string { return &u.GivenNameKana }},
	{"email", "email address", func(u *api.MemberUpdate) **string { return &u.Email }},
	{"phone", "phone number", func(u *api.MemberUpdate) **string { return &u.Phone }},
	{"postal-code", "postal code", func(u *api.MemberUpdate) **string { return &u.PostalCode }},
	{"prefecture", "prefecture", func(u *api.MemberUpdate) **string { return &u.Prefecture }},
	{"city", "city", func(u *api.MemberUpdate) **string { return &u.City }},
	{"address", "address line", func(u *api.MemberUpdate) **string { return &u.AddressLine }},
	{"bank-name", "bank name", func(u *api.MemberUpdate) **string { return &u.BankName }},
	{"branch-name", "bank branch", func(u *api.MemberUpdate) **string { return &u.BranchName }},
	{"account-type", "account type", func(u *api.MemberUpdate) **string { return &u.AccountType }},
	{"account-number", "account number", func(u *api.MemberUpdate) **string { return &u.AccountNumber }},
	{"account-holder", "account holder", func(u *api.MemberUpdate) **string { return &u.AccountHolder }},
	{"notes", "internal notes", func(u *api.MemberUpdate) **string { return &u.Notes }},
}

func init() {
	membersListCmd.Flags().Int("skip", 0, "number of members to skip")
	membersListCmd.Flags().Int("limit", api.DefaultPageSize, "maximum number of members to return")
	membersListCmd.Flags().String("search", "", "search by name, code or email")
	membersListCmd.Flags().String("status", "", "filter by status: active, suspended, withdrawn, pending")

	cf := membersCreateCmd.Flags()
	cf.String("code", "", "member code (required)")
	cf.String("family-name", "", "family name (required)")
	cf.String("given-name", "", "given name (required)")
	cf.String("family-name-kana", "", "family name reading")
	cf.String("given-name-kana", "", "given name reading")
	cf.String("email", "", "email address (required)")
	cf.String("phone", "", "phone number")
	cf.String("postal-code", "", "postal code")
	cf.String("prefecture", "", "prefecture")
	cf.String("city", "", "city")
	cf.String("address", "", "address line")
	cf.Int("sponsor-id", 0, "ID of the sponsoring member")
	cf.Int("upline-id", 0, "ID of the binary upline")
	cf.String("position", "", "binary position: left or right")
	for _, name := range []string{"code", "family-name", "given-name", "email"} {
		_ = membersCreateCmd.MarkFlagRequired(name)
	}

	membersUpdateCmd.Flags().String("status", "", "new status: active, suspended, withdrawn, pending")
	for _, f := range memberUpdateFlags {
		membersUpdateCmd.Flags().String(f.name, "", f.usage)
	}

	membersDeleteCmd.Flags().BoolP("yes", "y", false, "delete without asking")

	membersCmd.AddCommand(membersListCmd)
	membersCmd.AddCommand(membersShowCmd)
	membersCmd.AddCommand(membersCreateCmd)
	membersCmd.AddCommand(membersUpdateCmd)
	membersCmd.AddCommand(membersDeleteCmd)
	membersCmd.AddCommand(membersStatsCmd)

	rootCmd.AddCommand(membersCmd)
}

func parseMemberID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidField, errors.KindValidation,
			fmt.Sprintf("invalid member id %q", arg)).
			WithSuggestion("Member IDs are positive numbers; see 'boss members list'")
	}
	return id, nil
}

func parseStatus(s string) (api.MemberStatus, error) {
	status := api.MemberStatus(strings.ToLower(strings.TrimSpace(s)))
	if status == "" || status.Valid() {
		return status, nil
	}
	return "", errors.New(errors.ErrCodeInvalidField, errors.KindValidation,
		fmt.Sprintf("unknown status %q", s)).
		WithSuggestion("Use one of: active, suspended, withdrawn, pending")
}

func runMembersList(cmd *cobra.Command, args []string, d *deps) error {
	flags := cmd.Flags()
	skip, _ := flags.GetInt("skip")
	limit, _ := flags.GetInt("limit")
	search, _ := flags.GetString("search")
	rawStatus, _ := flags.GetString("status")

	status, err := parseStatus(rawStatus)
	if err != nil {
		return err
	}

	page, err := d.client.ListMembers(cmd.Context(), api.ListMembersParams{
		Skip:   skip,
		Limit:  limit,
		Search: search,
		Status: status,
	})
	if err != nil {
		return err
	}

	return render(cmd, d.cfg, page, memberTable(page, skip))
}

func memberTable(page *api.ListResponse[api.Member], skip int) ux.Table {
	t := ux.Table{Head: []string{"ID", "Code", "Name", "Email", "Status", "Level", "Sales"}}
	for _, m := range page.Items {
		t.Body = append(t.Body, []string{
			strconv.Itoa(m.ID),
			m.MemberCode,
			m.FullName(),
			m.Email,
			string(m.Status),
			strconv.Itoa(m.OrganizationLevel),
			strconv.FormatFloat(m.TotalSales, 'f', 0, 64),
		})
	}
	if len(page.Items) > 0 {
		t.Footer = fmt.Sprintf("Showing %d-%d of %d", skip+1, skip+len(page.Items), page.Total)
	}
	return t
}

func runMembersShow(cmd *cobra.Command, args []string, d *deps) error {
	id, err := parseMemberID(args[0])
	if err != nil {
		return err
	}

	m, err := d.client.GetMember(cmd.Context(), id)
	if err != nil {
		return err
	}
	return render(cmd, d.cfg, m, memberView(m))
}

func memberView(m *api.Member) ux.KeyValues {
	kv := ux.KeyValues{
		{"ID", strconv.Itoa(m.ID)},
		{"Code", m.MemberCode},
		{"Name", m.FullName()},
		{"Email", m.Email},
		{"Status", string(m.Status)},
		{"Level", strconv.Itoa(m.OrganizationLevel)},
		{"Total sales", strconv.FormatFloat(m.TotalSales, 'f', 0, 64)},
		{"Total rewards", strconv.FormatFloat(m.TotalRewards, 'f', 0, 64)},
	}
	optional := [][2]string{
		{"Phone", m.Phone},
		{"Address", strings.TrimSpace(strings.Join([]string{m.PostalCode, m.Prefecture, m.City, m.AddressLine}, " "))},
		{"Position", m.BinaryPosition},
	}
	for _, pair := range optional {
		if pair[1] != "" {
			kv = append(kv, pair)
		}
	}
	if m.Sponsor != nil {
		kv = append(kv, [2]string{"Sponsor", fmt.Sprintf("%s (%s)", m.Sponsor.FullName, m.Sponsor.MemberCode)})
	}
	if m.RegistrationDate != nil {
		kv = append(kv, [2]string{"Registered", m.RegistrationDate.Format("2006-01-02")})
	}
	return kv
}

func runMembersCreate(cmd *cobra.Command, args []string, d *deps) error {
	in, err := memberCreateFromFlags(cmd.Flags())
	if err != nil {
		return err
	}

	m, err := d.client.CreateMember(cmd.Context(), in)
	if err != nil {
		return err
	}
	return render(cmd, d.cfg, m, memberView(m))
}

func memberCreateFromFlags(flags *pflag.FlagSet) (api.MemberCreate, error) {
	get := func(name string) string {
		v, _ := flags.GetString(name)
		return strings.TrimSpace(v)
	}

	in := api.MemberCreate{
		MemberCode:     get("code"),
		FamilyName:     get("family-name"),
		GivenName:      get("given-name"),
		FamilyNameKana: get("family-name-kana"),
		GivenNameKana:  get("given-name-kana"),
		Email:          get("email"),
		Phone:          get("phone"),
		PostalCode:     get("postal-code"),
		Prefecture:     get("prefecture"),
		City:           get("city"),
		AddressLine:    get("address"),
		BinaryPosition: get("position"),
	}

	if flags.Changed("sponsor-id") {
		id, _ := flags.GetInt("sponsor-id")
		in.SponsorID = &id
	}
	if flags.Changed("upline-id") {
		id, _ := flags.GetInt("upline-id")
		in.UplineID = &id
	}

	switch in.BinaryPosition {
	case "", "left", "right":
	default:
		return in, errors.New(errors.ErrCodeInvalidField, errors.KindValidation,
			fmt.Sprintf("invalid position %q", in.BinaryPosition)).
			WithSuggestion("Use --position left or --position right")
	}
	return in, nil
}

func runMembersUpdate(cmd *cobra.Command, args []string, d *deps) error {
	id, err := parseMemberID(args[0])
	if err != nil {
		return err
	}

	in, err := memberUpdateFromFlags(cmd.Flags())
	if err != nil {
		return err
	}

	m, err := d.client.UpdateMember(cmd.Context(), id, in)
	if err != nil {
		return err
	}
	return render(cmd, d.cfg, m, memberView(m))
}

// memberUpdateFromFlags sets only the fields whose flags were given
func memberUpdateFromFlags(flags *pflag.FlagSet) (api.MemberUpdate, error) {
	var in api.MemberUpdate

	if flags.Changed("status") {
		raw, _ := flags.GetString("status")
		status, err := parseStatus(raw)
		if err != nil {
			return in, err
		}
		if status == "" {
			return in, errors.New(errors.ErrCodeInvalidField, errors.KindValidation, "--status must not be empty")
		}
		in.Status = &status
	}

	for _, f := range memberUpdateFlags {
		if !flags.Changed(f.name) {
			continue
		}
		v, _ := flags.GetString(f.name)
		*f.field(&in) = &v
	}

	if in.Empty() {
		return in, errors.New(errors.ErrCodeInvalidField, errors.KindValidation, "nothing to update").
			WithSuggestion("Pass at least one field flag, for example --status active")
	}
	return in, nil
}

func runMembersDelete(cmd *cobra.Command, args []string, d *deps) error {
	id, err := parseMemberID(args[0])
	if err != nil {
		return err
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		if !tui.ShouldPrompt() {
			return errors.New(errors.ErrCodeInvalidField, errors.KindValidation,
				"refusing to delete without confirmation").
				WithSuggestion("Pass --yes to delete non-interactively")
		}
		ok, err := tui.PromptForConfirmation(fmt.Sprintf("Delete member %d?", id), false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	if err := d.client.DeleteMember(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted member %d\n", id)
	return nil
}

func runMembersStats(cmd *cobra.Command, args []string, d *deps) error {
	s, err := d.client.MemberStats(cmd.Context())
	if err != nil {
		return err
	}

	view := ux.KeyValues{
		{"Total", strconv.Itoa(s.TotalMembers)},
		{"Active", strconv.Itoa(s.ActiveMembers)},
		{"Suspended", strconv.Itoa(s.SuspendedMembers)},
		{"Withdrawn", strconv.Itoa(s.WithdrawnMembers)},
		{"Pending", strconv.Itoa(s.PendingMembers)},
		{"New this month", strconv.Itoa(s.NewRegistrationsThisMonth)},
	}
	return render(cmd, d.cfg, s, view)
}
