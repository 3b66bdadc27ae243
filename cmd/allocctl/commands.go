package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// Response types mirror internal/http.

type resourceView struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	AvailableHours float64 `json:"available_hours"`
}

type taskView struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	RequiredHours float64 `json:"required_hours"`
	Priority      int     `json:"priority"`
}

type allocationView struct {
	ResourceID   int64   `json:"resource_id"`
	ResourceName string  `json:"resource_name"`
	TaskID       int64   `json:"task_id"`
	TaskTitle    string  `json:"task_title"`
	Hours        float64 `json:"hours"`
}

type alternativeView struct {
	ID          int64            `json:"id"`
	Explanation string           `json:"explanation"`
	Score       float64          `json:"score"`
	Allocations []allocationView `json:"allocations"`
}

type recommendationView struct {
	AlternativeID int64   `json:"alternative_id"`
	Score         float64 `json:"recommendation_score"`
	Recommended   bool    `json:"is_recommended"`
}

type alternativesResponse struct {
	Alternatives    []alternativeView    `json:"alternatives"`
	Total           int                  `json:"total"`
	Recommendations []recommendationView `json:"recommendations"`
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check allocd server health",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Status string `json:"status"`
		}
		if err := getJSON("/health", &resp); err != nil {
			return err
		}
		fmt.Printf("Server Status: %s\n", resp.Status)
		fmt.Printf("Server URL: %s\n", serverURL)
		return nil
	},
}

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Manage resources",
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage tasks",
}

var (
	resourceName  string
	resourceType  string
	resourceHours float64

	taskTitle    string
	taskHours    float64
	taskPriority int
)

func init() {
	resourcesList := &cobra.Command{
		Use:   "list",
		Short: "List all resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resources []resourceView
			if err := getJSON("/api/v1/resources", &resources); err != nil {
				return err
			}
			if len(resources) == 0 {
				fmt.Println("No resources.")
				return nil
			}
			for _, r := range resources {
				fmt.Printf("%3d  %-25s %-18s %6.1fh\n", r.ID, r.Name, r.Type, r.AvailableHours)
			}
			return nil
		},
	}

	resourcesAdd := &cobra.Command{
		Use:     "add",
		Short:   "Add a resource",
		Example: `  allocctl resources add --name "Ivan Ivanov" --type developer --hours 160`,
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"name":            resourceName,
				"type":            resourceType,
				"available_hours": resourceHours,
			}
			var created resourceView
			if err := postJSON("/api/v1/resources", body, &created); err != nil {
				return err
			}
			fmt.Printf("Created resource %d: %s\n", created.ID, created.Name)
			return nil
		},
	}
	resourcesAdd.Flags().StringVar(&resourceName, "name", "", "resource name")
	resourcesAdd.Flags().StringVar(&resourceType, "type", "", "resource type (developer, designer, ...)")
	resourcesAdd.Flags().Float64Var(&resourceHours, "hours", 0, "available hours")
	_ = resourcesAdd.MarkFlagRequired("name")
	_ = resourcesAdd.MarkFlagRequired("type")
	_ = resourcesAdd.MarkFlagRequired("hours")

	resourcesDelete := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("id must be an integer: %w", err)
			}
			if err := doJSON("DELETE", "/api/v1/resources/"+args[0], nil, nil); err != nil {
				return err
			}
			fmt.Printf("Deleted resource %s\n", args[0])
			return nil
		},
	}

	resourcesCmd.AddCommand(resourcesList, resourcesAdd, resourcesDelete)

	tasksList := &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			var tasks []taskView
			if err := getJSON("/api/v1/tasks", &tasks); err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Println("No tasks.")
				return nil
			}
			for _, t := range tasks {
				fmt.Printf("%3d  %-40s %6.1fh  p%d\n", t.ID, t.Title, t.RequiredHours, t.Priority)
			}
			return nil
		},
	}

	tasksAdd := &cobra.Command{
		Use:     "add",
		Short:   "Add a task",
		Example: `  allocctl tasks add --title "Test the system" --hours 120 --priority 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"title":          taskTitle,
				"required_hours": taskHours,
				"priority":       taskPriority,
			}
			var created taskView
			if err := postJSON("/api/v1/tasks", body, &created); err != nil {
				return err
			}
			fmt.Printf("Created task %d: %s\n", created.ID, created.Title)
			return nil
		},
	}
	tasksAdd.Flags().StringVar(&taskTitle, "title", "", "task title")
	tasksAdd.Flags().Float64Var(&taskHours, "hours", 0, "required hours")
	tasksAdd.Flags().IntVar(&taskPriority, "priority", 3, "priority, 1 (highest) to 5 (lowest)")
	_ = tasksAdd.MarkFlagRequired("title")
	_ = tasksAdd.MarkFlagRequired("hours")

	tasksDelete := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("id must be an integer: %w", err)
			}
			if err := doJSON("DELETE", "/api/v1/tasks/"+args[0], nil, nil); err != nil {
				return err
			}
			fmt.Printf("Deleted task %s\n", args[0])
			return nil
		},
	}

	tasksCmd.AddCommand(tasksList, tasksAdd, tasksDelete)
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate allocation alternatives",
	Long: `Generate allocation alternatives from the current resources and
tasks. Previously generated alternatives are replaced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp alternativesResponse
		if err := getJSON("/api/v1/alternatives", &resp); err != nil {
			return err
		}

		recommended := make(map[int64]float64)
		for _, rec := range resp.Recommendations {
			if rec.Recommended {
				recommended[rec.AlternativeID] = rec.Score
			}
		}

		fmt.Printf("Generated %d alternatives:\n\n", resp.Total)
		for _, alt := range resp.Alternatives {
			marker := " "
			if score, ok := recommended[alt.ID]; ok {
				marker = fmt.Sprintf("* (%.0f%%)", score*100)
			}
			fmt.Printf("[%d] score %.1f %s\n", alt.ID, alt.Score, marker)
			fmt.Printf("    %s\n", alt.Explanation)
			for _, a := range alt.Allocations {
				fmt.Printf("      %-25s -> %-40s %6.1fh\n", a.ResourceName, a.TaskTitle, a.Hours)
			}
			fmt.Println()
		}
		return nil
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <alternative-id>",
	Short: "Record the selection of an alternative",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
			return fmt.Errorf("alternative-id must be an integer: %w", err)
		}
		var resp struct {
			Message      string   `json:"message"`
			MLPrediction *float64 `json:"ml_prediction"`
		}
		if err := postJSON("/api/v1/alternatives/"+args[0]+"/select", nil, &resp); err != nil {
			return err
		}
		fmt.Println(resp.Message)
		if resp.MLPrediction != nil {
			fmt.Printf("Model predicted selection probability: %.0f%%\n", *resp.MLPrediction*100)
		}
		return nil
	},
}

var statsAlternativeID int64

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show distribution statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/api/v1/stats"
		if statsAlternativeID > 0 {
			path += fmt.Sprintf("?alternative_id=%d", statsAlternativeID)
		}
		var stats struct {
			TotalResources         int      `json:"total_resources"`
			TotalTasks             int      `json:"total_tasks"`
			TotalAvailableHours    float64  `json:"total_available_hours"`
			TotalRequiredHours     float64  `json:"total_required_hours"`
			TotalAllocatedHours    float64  `json:"total_allocated_hours"`
			OverallCoveragePercent float64  `json:"overall_coverage_percent"`
			Warnings               []string `json:"warnings"`
		}
		if err := getJSON(path, &stats); err != nil {
			return err
		}
		fmt.Printf("Resources: %d (%.1fh available)\n", stats.TotalResources, stats.TotalAvailableHours)
		fmt.Printf("Tasks:     %d (%.1fh required)\n", stats.TotalTasks, stats.TotalRequiredHours)
		fmt.Printf("Allocated: %.1fh (%.1f%% coverage)\n", stats.TotalAllocatedHours, stats.OverallCoveragePercent)
		for _, w := range stats.Warnings {
			fmt.Printf("Warning: %s\n", w)
		}
		return nil
	},
}

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export alternatives as JSON or CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := getRaw("/api/v1/export/alternatives?format=" + exportFormat)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the recommendation model on recorded selections",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Status       string  `json:"status"`
			Message      string  `json:"message"`
			Accuracy     float64 `json:"accuracy"`
			ChoicesUsed  int     `json:"choices_used"`
			TotalSamples int     `json:"total_samples"`
		}
		if err := postJSON("/api/v1/ml/train", nil, &resp); err != nil {
			return err
		}
		fmt.Printf("Status: %s\n", resp.Status)
		fmt.Printf("%s\n", resp.Message)
		if resp.Status == "success" {
			fmt.Printf("Accuracy: %.0f%% (%d choices, %d samples)\n",
				resp.Accuracy*100, resp.ChoicesUsed, resp.TotalSamples)
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show recommendation model state",
	RunE: func(cmd *cobra.Command, args []string) error {
		var info struct {
			Trained  bool     `json:"trained"`
			Samples  int      `json:"samples"`
			Accuracy float64  `json:"accuracy"`
			Features []string `json:"features"`
		}
		if err := getJSON("/api/v1/ml/info", &info); err != nil {
			return err
		}
		fmt.Printf("Trained:  %v\n", info.Trained)
		if info.Trained {
			fmt.Printf("Samples:  %d\n", info.Samples)
			fmt.Printf("Accuracy: %.0f%%\n", info.Accuracy*100)
		}
		fmt.Printf("Features: %d\n", len(info.Features))
		return nil
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Load the demo data set",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Message        string `json:"message"`
			ResourcesAdded int    `json:"resources_added"`
			TasksAdded     int    `json:"tasks_added"`
		}
		if err := postJSON("/api/v1/demo", nil, &resp); err != nil {
			return err
		}
		fmt.Printf("%s: %d resources, %d tasks\n", resp.Message, resp.ResourcesAdded, resp.TasksAdded)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all resources, tasks, alternatives and choices",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Message string         `json:"message"`
			Deleted map[string]int `json:"deleted"`
		}
		if err := postJSON("/api/v1/clear", nil, &resp); err != nil {
			return err
		}
		fmt.Printf("%s (resources: %d, tasks: %d, alternatives: %d, choices: %d)\n",
			resp.Message,
			resp.Deleted["resources"], resp.Deleted["tasks"],
			resp.Deleted["alternatives"], resp.Deleted["choices"])
		return nil
	},
}

func init() {
	statsCmd.Flags().Int64Var(&statsAlternativeID, "alternative", 0, "alternative ID to analyze (default: best)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "export format: json or csv")
}
