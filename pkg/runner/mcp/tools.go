package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/hubz/pkg/item"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	srv.AddTool(calendarViewTool(), calendarViewHandler(svc))
	srv.AddTool(itemsOnDateTool(), itemsOnDateHandler(svc))
	srv.AddTool(createTool(item.KindEvent), createHandler(svc, item.KindEvent))
	srv.AddTool(createTool(item.KindTask), createHandler(svc, item.KindTask))
	srv.AddTool(deleteItemTool(), deleteItemHandler(svc))
}

func calendarViewTool() mcp.Tool {
	return mcp.NewTool(
		"calendar_view",
		mcp.WithDescription("Lay out the calendar for a month, a week or a day with every item and its position in the day."),
		mcp.WithString("mode",
			mcp.Description("Layout to return. Defaults to month."),
			mcp.Enum("month", "week", "day"),
		),
		mcp.WithString("date",
			mcp.Description("Anchor date as YYYY-MM-DD. Defaults to today."),
		),
	)
}

func calendarViewHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Mode string `json:"mode"`
			Date string `json:"date"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		doc, err := svc.CalendarView(ctx, args.Mode, args.Date)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(doc)
	}
}

func itemsOnDateTool() mcp.Tool {
	return mcp.NewTool(
		"items_on_date",
		mcp.WithDescription("List the events and tasks of one day, ordered by start time."),
		mcp.WithString("date",
			mcp.Description("Day as YYYY-MM-DD. Defaults to today."),
		),
	)
}

func itemsOnDateHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date := request.GetString("date", "")

		day, err := svc.ItemsOnDate(ctx, date)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"date":  day.Date,
			"label": day.Label,
			"items": day.Items,
			"count": len(day.Items),
		})
	}
}

func createTool(kind item.Kind) mcp.Tool {
	if kind == item.KindTask {
		return mcp.NewTool(
			"create_task",
			mcp.WithDescription("Create a task due on a day."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title.")),
			mcp.WithString("date", mcp.Description("Due day as YYYY-MM-DD. Defaults to today.")),
			mcp.WithString("time", mcp.Description("Optional due time as HH:MM.")),
			mcp.WithString("description", mcp.Description("Optional notes.")),
		)
	}
	return mcp.NewTool(
		"create_event",
		mcp.WithDescription("Create an event. Without a time the event lasts the whole day."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Event title.")),
		mcp.WithString("date", mcp.Description("Day as YYYY-MM-DD. Defaults to today.")),
		mcp.WithString("time", mcp.Description("Optional start time as HH:MM.")),
		mcp.WithString("duration", mcp.Description("Optional length such as 45m or 1h30m. Defaults to 1h.")),
		mcp.WithString("location", mcp.Description("Optional place.")),
		mcp.WithString("description", mcp.Description("Optional notes.")),
	)
}

func createHandler(svc *Service, kind item.Kind) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Title       string `json:"title"`
			Date        string `json:"date"`
			Time        string `json:"time"`
			Duration    string `json:"duration"`
			Location    string `json:"location"`
			Description string `json:"description"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		created, err := svc.Create(ctx, kind, CreateOptions{
			Title:       args.Title,
			Description: args.Description,
			Location:    args.Location,
			Date:        args.Date,
			Time:        args.Time,
			Duration:    args.Duration,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(created)
	}
}

func deleteItemTool() mcp.Tool {
	return mcp.NewTool(
		"delete_item",
		mcp.WithDescription("Delete an event or a task by identifier."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Identifier returned by calendar_view or a create tool."),
		),
		mcp.WithString("kind",
			mcp.Description("Item kind. Defaults to event."),
			mcp.Enum("event", "task"),
		),
	)
}

func deleteItemHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		kind, err := item.ParseKind(request.GetString("kind", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := svc.Delete(ctx, kind, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"id":      id,
			"kind":    kind,
			"deleted": true,
		})
	}
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
