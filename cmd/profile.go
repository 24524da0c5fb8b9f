package cmd

import (
	"fmt"
	"log"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rorical/RoriAtlas/internal/config"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage model and search profiles",
	Long:  `Manage profiles holding the model endpoint, the search API key and run limits.`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		fmt.Printf("Active Profile: %s\n\n", cfg.ActiveProfile)
		fmt.Println("Available Profiles:")
		for _, name := range cfg.ProfileNames() {
			profile := cfg.Profiles[name]
			marker := ""
			if name == cfg.ActiveProfile {
				marker = " (active)"
			}
			fmt.Printf("  %s%s\n", name, marker)
			fmt.Printf("    Model: %s\n", orDefault(profile.Model, config.DefaultModel))
			if profile.BaseURL != "" {
				fmt.Printf("    Base URL: %s\n", profile.BaseURL)
			}
			fmt.Printf("    Model Key: %s\n", yesNo(profile.APIKey != ""))
			fmt.Printf("    Search Key: %s\n", yesNo(profile.SearchAPIKey != ""))
			fmt.Println()
		}
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName := cfg.ActiveProfile
		if len(args) > 0 {
			profileName = args[0]
		}
		profile, exists := cfg.Profiles[profileName]
		if !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		fmt.Printf("Profile: %s\n", profileName)
		fmt.Printf("Model: %s\n", orDefault(profile.Model, config.DefaultModel))
		fmt.Printf("Base URL: %s\n", orDefault(profile.BaseURL, "(OpenAI)"))
		fmt.Printf("Model Key: %s\n", config.MaskKey(profile.APIKey))
		fmt.Printf("Search Key: %s\n", config.MaskKey(profile.SearchAPIKey))
		fmt.Printf("Search Depth: %s\n", orDefault(profile.SearchDepth, config.DefaultSearchDepth))
		fmt.Printf("Search Results: %d\n", orDefaultInt(profile.SearchMaxResults, config.DefaultMaxResults))
		fmt.Printf("Max Tool Calls: %d\n", orDefaultInt(profile.MaxToolCalls, config.DefaultMaxToolCalls))
		fmt.Printf("Structured Output: %s\n", yesNo(!profile.DisableStructuredOutput))
	},
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		var profileName string
		if len(args) > 0 {
			profileName = args[0]
		} else {
			prompt := promptui.Prompt{
				Label: "Profile name",
			}
			profileName, err = prompt.Run()
			if err != nil {
				log.Fatalf("Prompt failed: %v", err)
			}
		}

		if _, exists := cfg.Profiles[profileName]; exists {
			log.Fatalf("Profile '%s' already exists", profileName)
		}

		profile, err := promptProfile(config.DefaultProfile())
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}
		cfg.Profiles[profileName] = profile

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' added successfully!\n", profileName)
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit [profile-name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName := pickProfile(cfg, args, "Select profile to edit", false)
		profile, exists := cfg.Profiles[profileName]
		if !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		profile, err = promptProfile(profile)
		if err != nil {
			log.Fatalf("Prompt failed: %v", err)
		}
		cfg.Profiles[profileName] = profile

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' updated successfully!\n", profileName)
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete [profile-name]",
	Short: "Delete a profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		profileName := pickProfile(cfg, args, "Select profile to delete", false)
		if _, exists := cfg.Profiles[profileName]; !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		confirmPrompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete profile '%s'? (y/N)", profileName),
			IsConfirm: true,
		}
		if _, err := confirmPrompt.Run(); err != nil {
			fmt.Println("Deletion cancelled")
			return
		}

		removeProfile(cfg, profileName)

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Profile '%s' deleted successfully!\n", profileName)
	},
}

var switchProfileCmd = &cobra.Command{
	Use:   "switch [profile-name]",
	Short: "Switch to a different profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		if len(args) == 0 && len(cfg.Profiles) < 2 {
			fmt.Println("No other profiles available to switch to")
			return
		}
		profileName := pickProfile(cfg, args, "Select profile to switch to", true)
		if _, exists := cfg.Profiles[profileName]; !exists {
			log.Fatalf("Profile '%s' does not exist", profileName)
		}

		cfg.ActiveProfile = profileName

		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save config: %v", err)
		}

		fmt.Printf("Switched to profile '%s'\n", profileName)
	},
}

// pickProfile takes the name from args or asks for one
func pickProfile(cfg *config.Config, args []string, label string, skipActive bool) string {
	if len(args) > 0 {
		return args[0]
	}

	var names []string
	for _, name := range cfg.ProfileNames() {
		if skipActive && name == cfg.ActiveProfile {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		log.Fatalf("No profiles available")
	}

	prompt := promptui.Select{
		Label: label,
		Items: names,
	}
	_, name, err := prompt.Run()
	if err != nil {
		log.Fatalf("Selection failed: %v", err)
	}
	return name
}

// removeProfile deletes name, moving the active marker if needed. Deleting the
// last profile leaves a fresh default behind.
func removeProfile(cfg *config.Config, name string) {
	delete(cfg.Profiles, name)
	if len(cfg.Profiles) == 0 {
		cfg.Profiles["default"] = config.DefaultProfile()
	}
	if cfg.ActiveProfile == name {
		cfg.ActiveProfile = cfg.ProfileNames()[0]
	}
}

// promptProfile walks through every field, starting from the values in p
func promptProfile(p config.Profile) (config.Profile, error) {
	var err error

	apiKeyPrompt := promptui.Prompt{
		Label:   "Model API Key",
		Default: p.APIKey,
		Mask:    '*',
	}
	if p.APIKey, err = apiKeyPrompt.Run(); err != nil {
		return p, err
	}

	modelPrompt := promptui.Prompt{
		Label:   "Model",
		Default: orDefault(p.Model, config.DefaultModel),
	}
	if p.Model, err = modelPrompt.Run(); err != nil {
		return p, err
	}

	baseURLPrompt := promptui.Prompt{
		Label:   "Base URL (optional)",
		Default: p.BaseURL,
	}
	if p.BaseURL, err = baseURLPrompt.Run(); err != nil {
		return p, err
	}

	searchKeyPrompt := promptui.Prompt{
		Label:   "Tavily API Key",
		Default: p.SearchAPIKey,
		Mask:    '*',
	}
	if p.SearchAPIKey, err = searchKeyPrompt.Run(); err != nil {
		return p, err
	}

	depthSelect := promptui.Select{
		Label: "Search depth",
		Items: []string{"basic", "advanced"},
	}
	if _, p.SearchDepth, err = depthSelect.Run(); err != nil {
		return p, err
	}

	maxCallsPrompt := promptui.Prompt{
		Label:    "Max tool calls per run",
		Default:  strconv.Itoa(orDefaultInt(p.MaxToolCalls, config.DefaultMaxToolCalls)),
		Validate: positiveInt,
	}
	raw, err := maxCallsPrompt.Run()
	if err != nil {
		return p, err
	}
	p.MaxToolCalls, _ = strconv.Atoi(raw)

	return p, nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orDefaultInt(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

func init() {
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(editProfileCmd)
	profileCmd.AddCommand(deleteProfileCmd)
	profileCmd.AddCommand(switchProfileCmd)
}
