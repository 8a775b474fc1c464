/*
Copyright © 2021 Edmond Cotterell

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/zivilschutz/zsadmin/colors"
	"github.com/zivilschutz/zsadmin/server"
	"github.com/zivilschutz/zsadmin/server/services"
	"github.com/zivilschutz/zsadmin/shared"
)

func createReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render reports from the command line",
		Long: `Render the same PDF and XLSX reports the API serves, straight from the database.

Examples:
  zsadmin report attendance --year 2026 --out teilnahme.pdf
  zsadmin report personnel --format xlsx --status aktiv --out personal.xlsx`,
	}

	cmd.AddCommand(createAttendanceReportCmd(), createPersonnelReportCmd())
	return cmd
}

func createAttendanceReportCmd() *cobra.Command {
	var (
		year    int
		platoon int
		out     string
	)

	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Attendance matrix of all trainings of a year (PDF)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var platoonFilter *int
			if cmd.Flags().Changed("platoon") {
				platoonFilter = &platoon
			}

			return renderReport(cmd, out, func(svc *services.Services, w io.Writer) error {
				return svc.Reports.AttendancePDF(w, year, platoonFilter)
			})
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", time.Now().Year(), "year of the trainings")
	cmd.Flags().IntVarP(&platoon, "platoon", "p", 0, "only list persons of this platoon (Zug)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (required)")
	cmd.MarkFlagRequired("out")

	return cmd
}

func createPersonnelReportCmd() *cobra.Command {
	var (
		format  string
		status  string
		platoon int
		out     string
	)

	cmd := &cobra.Command{
		Use:   "personnel",
		Short: "Personnel list (PDF or XLSX)",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := services.PersonFilter{Status: status}
			if cmd.Flags().Changed("platoon") {
				filter.Platoon = &platoon
			}

			switch format {
			case "pdf":
				return renderReport(cmd, out, func(svc *services.Services, w io.Writer) error {
					return svc.Reports.PersonnelPDF(w, filter)
				})
			case "xlsx":
				return renderReport(cmd, out, func(svc *services.Services, w io.Writer) error {
					return svc.Reports.PersonnelXLSX(w, filter)
				})
			default:
				return formattedError("unknown format %q, use pdf or xlsx", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "pdf or xlsx")
	cmd.Flags().StringVarP(&status, "status", "s", "", "only list persons with this status")
	cmd.Flags().IntVarP(&platoon, "platoon", "p", 0, "only list persons of this platoon (Zug)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (required)")
	cmd.MarkFlagRequired("out")

	return cmd
}

// renderReport opens the database and writes a report to out.
func renderReport(cmd *cobra.Command, out string, render func(*services.Services, io.Writer) error) error {
	config, err := serverConfig()
	if err != nil {
		return err
	}

	err = server.OpenDatabase(config, isDevEnv)
	if err != nil {
		return formattedError("unable to open database: %v", err)
	}

	svc := services.New(services.Deps{Validate: shared.NewValidator()})

	file, err := os.Create(out)
	if err != nil {
		return formattedError("unable to create %s: %v", out, err)
	}
	defer file.Close()

	err = render(svc, file)
	if err != nil {
		os.Remove(out)
		return formattedError("unable to render report: %v", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", colors.Green("Report written to"), out)
	return nil
}
