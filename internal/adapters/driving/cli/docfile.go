package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/frostholm/marginalia/internal/doctree"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage document files",
}

var docInitCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Create a sample document file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocInit,
}

var docShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the serialized document",
	RunE:  runDocShow,
}

var docTextCmd = &cobra.Command{
	Use:   "text",
	Short: "Print the document's text content",
	RunE:  runDocText,
}

// docClean strips embedded comment markers from the output.
var docClean bool

func init() {
	docShowCmd.Flags().BoolVar(&docClean, "clean", false, "Strip embedded comment markers")

	docCmd.AddCommand(docInitCmd)
	docCmd.AddCommand(docShowCmd)
	docCmd.AddCommand(docTextCmd)
	rootCmd.AddCommand(docCmd)
}

func runDocInit(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	doc := doctree.NewWithSchema(doctree.DefaultSchema(),
		doctree.Heading(1, doctree.Text("Notes")),
		doctree.Paragraph(doctree.Text("Select a range and anchor a comment to it.")),
		doctree.BulletList(
			doctree.ListItem(doctree.Paragraph(doctree.Text("offset: positions plus a live marker"))),
			doctree.ListItem(doctree.Paragraph(doctree.Text("nodePath: structural path from the root"))),
			doctree.ListItem(doctree.Paragraph(doctree.Text("contentSpan: marker embedded in the body"))),
		),
	)
	data, err := doc.Serialize()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return err
	}
	cmd.Printf("Created %s (size %d)\n", path, doc.ContentSize())
	return nil
}

func runDocShow(cmd *cobra.Command, _ []string) error {
	session, closeKV, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeKV()

	var out string
	if docClean {
		out, err = session.CleanDocumentJSON()
	} else {
		out, err = session.DocumentJSON()
	}
	if err != nil {
		return err
	}
	cmd.Println(out)
	return nil
}

func runDocText(cmd *cobra.Command, _ []string) error {
	session, closeKV, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeKV()

	cmd.Println(session.Document().TextContent())
	return nil
}
