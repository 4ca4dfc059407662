package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/maltedev/shoplens/internal/app"
	"github.com/maltedev/shoplens/internal/export"
	"github.com/maltedev/shoplens/internal/mcpserver"
	"github.com/maltedev/shoplens/internal/models"
	"github.com/maltedev/shoplens/internal/stats"
)

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or clear past searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			items := a.Stores.History.List(ctx)
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), items)
			}

			rows := make([][]string, 0, len(items))
			for _, it := range items {
				rows = append(rows, []string{
					it.Timestamp.Format(time.DateTime),
					it.ProductName,
					strconv.Itoa(it.ResultCount),
					it.ResultID,
				})
			}
			return printTable(cmd.OutOrStdout(), []string{"TIME", "PRODUCT", "FOUND", "RESULT"}, rows)
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole search history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Stores.History.Clear(ctx); err != nil {
				return err
			}
			printSuccess("Search history cleared")
			return nil
		})
	},
}

// --- wishlist ---

var wishlistCmd = &cobra.Command{
	Use:   "wishlist",
	Short: "List saved products",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			items := a.Stores.Wishlist.List(ctx)
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), items)
			}

			rows := make([][]string, 0, len(items))
			for _, it := range items {
				target := "-"
				if it.TargetPrice != nil {
					target = money(*it.TargetPrice)
				}
				rows = append(rows, []string{
					it.Product.ID,
					it.Product.Name,
					money(it.CurrentBestPrice),
					it.CurrentBestStore,
					target,
					strconv.FormatBool(it.AlertEnabled),
				})
			}
			return printTable(cmd.OutOrStdout(), []string{"ID", "PRODUCT", "BEST", "STORE", "TARGET", "ALERT"}, rows)
		})
	},
}

var wishlistAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Save a catalog product to the wishlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetFloat64("target")

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			product, ok := a.Catalog.Product(args[0])
			if !ok {
				return fmt.Errorf("product %s not found", args[0])
			}

			item := models.WishlistItem{Product: product}
			if target > 0 {
				item.TargetPrice = &target
				item.AlertEnabled = true
			}

			added, err := a.Stores.Wishlist.Add(ctx, item)
			if err != nil {
				return err
			}
			if !added {
				printWarning("%s is already in the wishlist", product.Name)
				return nil
			}

			if quotes, err := a.Quotes.Quotes(ctx, product); err == nil {
				if _, err := a.Stores.Wishlist.RefreshBestPrice(ctx, product.ID, quotes); err != nil {
					return err
				}
			}
			printSuccess("Added %s", product.Name)
			return nil
		})
	},
}

var wishlistRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the wishlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Stores.Wishlist.Remove(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Removed %s", args[0])
			return nil
		})
	},
}

// --- alerts ---

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List price alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		active, _ := cmd.Flags().GetBool("active")

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			alerts := a.Stores.Alerts.List(ctx)
			if active {
				alerts = a.Stores.Alerts.ListActive(ctx)
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), alerts)
			}
			return printTable(cmd.OutOrStdout(), []string{"ID", "PRODUCT", "STORE", "CURRENT", "TARGET", "ENABLED"}, alertRows(alerts))
		})
	},
}

var alertsSetCmd = &cobra.Command{
	Use:   "set <product-id> <store-id> <target-price>",
	Short: "Create or update the alert for a product at one store",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := strconv.ParseFloat(args[2], 64)
		if err != nil || target <= 0 {
			return fmt.Errorf("target price must be a positive number")
		}
		disabled, _ := cmd.Flags().GetBool("disabled")

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			product, ok := a.Catalog.Product(args[0])
			if !ok {
				return fmt.Errorf("product %s not found", args[0])
			}
			if _, ok := a.Catalog.Retailer(args[1]); !ok {
				return fmt.Errorf("store %s not found", args[1])
			}

			alert, err := a.Stores.Alerts.Upsert(ctx, models.PriceAlert{
				ProductID:   product.ID,
				ProductName: product.Name,
				StoreID:     args[1],
				TargetPrice: target,
				Enabled:     !disabled,
			})
			if err != nil {
				return err
			}
			printSuccess("Alert %s: %s at %s below %s", alert.ID, product.Name, args[1], money(target))
			return nil
		})
	},
}

var alertsRemoveCmd = &cobra.Command{
	Use:   "remove <alert-id>",
	Short: "Delete a price alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Stores.Alerts.Remove(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Removed alert %s", args[0])
			return nil
		})
	},
}

var alertsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Re-quote every active alert and publish triggered ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			report, err := a.Watcher.CheckAll(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), report)
			}
			printSuccess("Checked %d alerts, %d triggered, %d skipped", report.Checked, len(report.Triggered), report.Skipped)
			if len(report.Triggered) == 0 {
				return nil
			}
			return printTable(cmd.OutOrStdout(), []string{"ID", "PRODUCT", "STORE", "CURRENT", "TARGET", "ENABLED"}, alertRows(report.Triggered))
		})
	},
}

func alertRows(alerts []models.PriceAlert) [][]string {
	rows := make([][]string, 0, len(alerts))
	for _, al := range alerts {
		rows = append(rows, []string{
			al.ID,
			al.ProductName,
			al.StoreID,
			money(al.CurrentPrice),
			money(al.TargetPrice),
			strconv.FormatBool(al.Enabled),
		})
	}
	return rows
}

// --- stats ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		scans, _ := cmd.Flags().GetBool("scans")

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			out := cmd.OutOrStdout()
			if scans {
				s := stats.ComputeScans(a.Stores.Scans.List(ctx))
				if jsonOutput {
					return printJSON(out, s)
				}
				return printTable(out, []string{"SCANS", "COMPLETED", "VULNS", "CRITICAL", "HIGH", "MEDIUM", "LOW", "INFO"}, [][]string{{
					strconv.Itoa(s.TotalScans),
					strconv.Itoa(s.CompletedScans),
					strconv.Itoa(s.TotalVulnerabilities),
					strconv.Itoa(s.CriticalCount),
					strconv.Itoa(s.HighCount),
					strconv.Itoa(s.MediumCount),
					strconv.Itoa(s.LowCount),
					strconv.Itoa(s.InfoCount),
				}})
			}

			s := stats.Compute(ctx, stats.Sources{
				History:  a.Stores.History,
				Results:  a.Stores.Results,
				Wishlist: a.Stores.Wishlist,
				Alerts:   a.Stores.Alerts,
			})
			if jsonOutput {
				return printJSON(out, s)
			}
			return printTable(out, []string{"SEARCHES", "PRODUCTS", "AVG SAVINGS", "WISHLIST", "ALERTS"}, [][]string{{
				strconv.Itoa(s.TotalSearches),
				strconv.Itoa(s.TotalProductsFound),
				money(s.AverageSavings),
				strconv.Itoa(s.WishlistItems),
				strconv.Itoa(s.PriceAlertsActive),
			}})
		})
	},
}

// --- products ---

var productsCmd = &cobra.Command{
	Use:   "products [query]",
	Short: "Search the product catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) == 1 {
			query = args[0]
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			products := a.Catalog.Search(query)
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), products)
			}
			rows := make([][]string, 0, len(products))
			for _, p := range products {
				rows = append(rows, []string{p.ID, p.Name, p.Brand, string(p.Category), money(p.BasePrice)})
			}
			return printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "BRAND", "CATEGORY", "BASE"}, rows)
		})
	},
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a scan or a search result as JSON or CSV",
}

var exportScanCmd = &cobra.Command{
	Use:   "scan <scan-id>",
	Short: "Export a vulnerability scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := exportFormat(cmd)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			scan, err := a.Stores.Scans.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return writeExport(cmd, "scan", scan.ID, format, func(f *os.File) error {
				return export.Scan(f, scan, format)
			})
		})
	},
}

var exportResultCmd = &cobra.Command{
	Use:   "result <result-id>",
	Short: "Export a search result's price comparison",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := exportFormat(cmd)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			result, err := a.Stores.Results.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return writeExport(cmd, "result", result.ID, format, func(f *os.File) error {
				return export.Result(f, result, format)
			})
		})
	},
}

func exportFormat(cmd *cobra.Command) (export.Format, error) {
	f, _ := cmd.Flags().GetString("format")
	return export.ParseFormat(f)
}

// writeExport writes to --out, or to <kind>-<id>.<format> in --dir.
func writeExport(cmd *cobra.Command, kind, id string, format export.Format, write func(*os.File) error) error {
	path, _ := cmd.Flags().GetString("out")
	if path == "" {
		dir, _ := cmd.Flags().GetString("dir")
		path = filepath.Join(dir, export.Filename(kind, id, format))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return err
	}
	printSuccess("Wrote %s", path)
	return nil
}

// --- mcp ---

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the shoplens MCP tools over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return mcpserver.ServeStdio(mcpserver.New(mcpserver.Deps{
				Stores:  a.Stores,
				Catalog: a.Catalog,
				Quotes:  a.Quotes,
			}))
		})
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)

	wishlistAddCmd.Flags().Float64("target", 0, "Target price; enables the alert flag")
	wishlistCmd.AddCommand(wishlistAddCmd)
	wishlistCmd.AddCommand(wishlistRemoveCmd)

	alertsCmd.Flags().Bool("active", false, "Only show enabled alerts")
	alertsSetCmd.Flags().Bool("disabled", false, "Store the alert without enabling it")
	alertsCmd.AddCommand(alertsSetCmd)
	alertsCmd.AddCommand(alertsRemoveCmd)
	alertsCmd.AddCommand(alertsCheckCmd)

	statsCmd.Flags().Bool("scans", false, "Show vulnerability scan statistics instead")

	for _, c := range []*cobra.Command{exportScanCmd, exportResultCmd} {
		c.Flags().String("format", "json", "Export format: json or csv")
		c.Flags().String("out", "", "Output file (default <kind>-<id>.<format>)")
		c.Flags().String("dir", ".", "Directory for the default output file")
		exportCmd.AddCommand(c)
	}

	rootCmd.AddCommand(historyCmd, wishlistCmd, alertsCmd, statsCmd, productsCmd, exportCmd, mcpCmd)
}
