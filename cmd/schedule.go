package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"storyforge/internal/app"
	"storyforge/internal/model"
	"storyforge/pkg/config"
)

var (
	scheduleActiveStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	scheduleInactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage generation schedules",
}

var scheduleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a schedule interactively",
	RunE:  runScheduleAdd,
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List schedules",
	RunE:  runScheduleList,
}

var scheduleEnableCmd = &cobra.Command{
	Use:   "enable <schedule-id>",
	Short: "Activate a schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setScheduleActive(cmd, args[0], true) },
}

var scheduleDisableCmd = &cobra.Command{
	Use:   "disable <schedule-id>",
	Short: "Deactivate a schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setScheduleActive(cmd, args[0], false) },
}

var scheduleRemoveCmd = &cobra.Command{
	Use:   "remove <schedule-id>",
	Short: "Delete a schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleRemove,
}

func init() {
	scheduleCmd.AddCommand(scheduleAddCmd)
	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleEnableCmd)
	scheduleCmd.AddCommand(scheduleDisableCmd)
	scheduleCmd.AddCommand(scheduleRemoveCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func runScheduleAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Load()

	svc, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	var (
		name      string
		style     string
		perDayStr string
		timezone  = "UTC"
		timesStr  string
		channelID string
		pageID    string
		template  string
	)

	channelOptions := []huh.Option[string]{huh.NewOption("none", "")}
	for _, ch := range svc.Store().Channels.List() {
		channelOptions = append(channelOptions, huh.NewOption(ch.Title, ch.ChannelID))
	}
	pageOptions := []huh.Option[string]{huh.NewOption("none", "")}
	for _, page := range svc.Store().Pages.List() {
		pageOptions = append(pageOptions, huh.NewOption(page.Name, page.PageID))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Schedule name").
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Content style").
				Options(
					huh.NewOption("Story", "story"),
					huh.NewOption("Science Short", "science_short"),
					huh.NewOption("Hollywood Hype", "hollywood_hype"),
					huh.NewOption("Trade Wave", "trade_wave"),
				).
				Value(&style),
			huh.NewInput().
				Title("Videos per day").
				Value(&perDayStr).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 1 {
						return fmt.Errorf("enter a positive number")
					}
					return nil
				}),
			huh.NewInput().
				Title("Timezone (IANA)").
				Value(&timezone).
				Validate(func(s string) error {
					if _, err := time.LoadLocation(s); err != nil {
						return fmt.Errorf("unknown timezone")
					}
					return nil
				}),
			huh.NewInput().
				Title("Daily slots (HH:MM, comma separated)").
				Placeholder("09:00, 18:00").
				Value(&timesStr).
				Validate(validateSlots),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("YouTube channel").
				Options(channelOptions...).
				Value(&channelID),
			huh.NewSelect[string]().
				Title("Facebook page").
				Options(pageOptions...).
				Value(&pageID),
			huh.NewText().
				Title("Prompt template (optional)").
				Value(&template),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	perDay, _ := strconv.Atoi(perDayStr)
	schedule := &model.Schedule{
		ID:               uuid.NewString(),
		Name:             name,
		Style:            style,
		AspectRatio:      cfg.Generator.AspectRatio,
		VideosPerDay:     perDay,
		Timezone:         timezone,
		UploadTimes:      parseSlots(timesStr),
		Active:           true,
		PromptTemplate:   strings.TrimSpace(template),
		YouTubeChannelID: channelID,
		FacebookPageID:   pageID,
		CreatedAt:        time.Now().UTC(),
	}
	if err := svc.Store().Schedules.Put(schedule); err != nil {
		return err
	}

	fmt.Printf("Created schedule %s (%d/day at %s, %s)\n",
		schedule.ID, schedule.VideosPerDay, strings.Join(schedule.UploadTimes, " "), schedule.Timezone)
	return nil
}

func validateSlots(s string) error {
	slots := parseSlots(s)
	if len(slots) == 0 {
		return fmt.Errorf("at least one slot is required")
	}
	for _, slot := range slots {
		if _, err := time.Parse("15:04", slot); err != nil {
			return fmt.Errorf("%q is not HH:MM", slot)
		}
	}
	return nil
}

// parseSlots splits the comma separated input and normalizes each
// entry to zero-padded HH:MM, the format slot matching compares
// against. "9:00" parses fine but would never match otherwise.
func parseSlots(s string) []string {
	var slots []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if t, err := time.Parse("15:04", part); err == nil {
			part = t.Format("15:04")
		}
		slots = append(slots, part)
	}
	return slots
}

func runScheduleList(cmd *cobra.Command, args []string) error {
	svc, err := app.BuildService(cmd.Context(), config.Load())
	if err != nil {
		return err
	}
	defer svc.Close()

	schedules := svc.Store().Schedules.List()
	if len(schedules) == 0 {
		fmt.Println("No schedules yet. Run: storyforge schedule add")
		return nil
	}

	for _, s := range schedules {
		state := scheduleInactiveStyle.Render("inactive")
		if s.Active {
			state = scheduleActiveStyle.Render("active")
		}
		fmt.Printf("%s  %-8s  %s\n", s.ID, state, s.Name)
		fmt.Printf("    %d/day at %s (%s), style %s, quota %d per slot\n",
			s.VideosPerDay, strings.Join(s.UploadTimes, " "), s.Timezone, s.Style, s.SlotQuota())
	}
	return nil
}

func setScheduleActive(cmd *cobra.Command, id string, active bool) error {
	svc, err := app.BuildService(cmd.Context(), config.Load())
	if err != nil {
		return err
	}
	defer svc.Close()

	schedule, err := svc.Store().Schedules.Get(id)
	if err != nil {
		return err
	}
	schedule.Active = active
	if err := svc.Store().Schedules.Put(schedule); err != nil {
		return err
	}

	fmt.Printf("Schedule %s is now %s\n", id, map[bool]string{true: "active", false: "inactive"}[active])
	return nil
}

func runScheduleRemove(cmd *cobra.Command, args []string) error {
	svc, err := app.BuildService(cmd.Context(), config.Load())
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.Store().Schedules.Delete(args[0]); err != nil {
		return err
	}
	fmt.Println("Schedule removed.")
	return nil
}
