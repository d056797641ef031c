package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/avoronovs/papertrail/internal/api"
	"github.com/avoronovs/papertrail/internal/client/models"
	"github.com/avoronovs/papertrail/internal/client/services"
	"github.com/avoronovs/papertrail/internal/netx"
)

const dateLayout = "2006-01-02"

// Add collects document fields interactively and stores the record locally,
// flagged pending for the next sync.
func (a *App) Add(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		return err
	}
	location, err := GetSimpleText(a.reader, "Enter physical location (e.g. \"desk drawer\", \"safe\")", os.Stdout)
	if err != nil {
		return err
	}
	description, err := GetSimpleText(a.reader, "Enter description (optional)", os.Stdout)
	if err != nil {
		return err
	}
	category, err := GetSimpleText(a.reader, "Enter category (id-document, legal, medical, financial)", os.Stdout)
	if err != nil {
		return err
	}
	tagsLine, err := GetSimpleText(a.reader, "Enter urgency tags, comma-separated (expires-soon, need-for-taxes, renewal-due; optional)", os.Stdout)
	if err != nil {
		return err
	}
	expLine, err := GetSimpleText(a.reader, "Enter expiration date YYYY-MM-DD (optional)", os.Stdout)
	if err != nil {
		return err
	}

	req := &api.CreateDocumentRequest{
		Title:       title,
		Location:    location,
		Description: description,
		Category:    api.Category(category),
		UrgencyTags: parseTags(tagsLine),
	}
	if expLine != "" {
		exp, err := time.Parse(dateLayout, expLine)
		if err != nil {
			return fmt.Errorf("invalid expiration date: %w", err)
		}
		req.ExpirationDate = &exp
	}

	doc, err := a.docs.Create(ctx, req)
	if err != nil {
		a.logger.Error(ctx, "failed to add document", "error", err)
		return err
	}

	fmt.Printf("Added %s (%s)\n", doc.Title, doc.ID)
	return nil
}

// List prints a one-line summary of every document, newest first.
func (a *App) List(ctx context.Context) error {
	docs, err := a.docs.GetAll(ctx)
	if err != nil {
		return err
	}
	printDocumentList(docs)
	return nil
}

// Show prints one document in full, prompting for its id.
func (a *App) Show(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter document id", os.Stdout)
	if err != nil {
		return err
	}

	doc, err := a.docs.Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("Title:      %s\n", doc.Title)
	fmt.Printf("Location:   %s\n", doc.Location)
	if doc.Description != "" {
		fmt.Printf("Description: %s\n", doc.Description)
	}
	fmt.Printf("Category:   %s\n", doc.Category)
	if len(doc.UrgencyTags) > 0 {
		fmt.Printf("Urgency:    %s\n", joinTags(doc.UrgencyTags))
	}
	if doc.ExpirationDate != nil {
		fmt.Printf("Expires:    %s\n", doc.ExpirationDate.Format(dateLayout))
	}
	if doc.ImageKey != "" || len(doc.ImageData) > 0 {
		fmt.Println("Image:      attached")
	}
	fmt.Printf("Updated:    %s (%s)\n", doc.UpdatedAt.Format(time.RFC3339), doc.SyncStatus)
	return nil
}

// Search prints documents matching the given text across title, location,
// description and category.
func (a *App) Search(ctx context.Context, query string) error {
	docs, err := a.docs.Search(ctx, query)
	if err != nil {
		return err
	}
	printDocumentList(docs)
	return nil
}

// Expiring prints documents expiring within daysAhead days (default 30).
func (a *App) Expiring(ctx context.Context, args []string) error {
	daysAhead := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid day count %q", args[0])
		}
		daysAhead = n
	}

	docs, err := a.docs.GetExpiring(ctx, daysAhead)
	if err != nil {
		return err
	}
	printDocumentList(docs)
	return nil
}

// Stats prints the aggregate counters.
func (a *App) Stats(ctx context.Context) error {
	stats, err := a.docs.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Documents: %d, expiring within %d days: %d, categories in use: %d\n",
		stats.TotalDocs, services.DefaultExpiringWindowDays, stats.ExpiringDocs, stats.Categories)
	return nil
}

// Update prompts for an id and new field values; empty answers keep the
// stored value.
func (a *App) Update(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter document id", os.Stdout)
	if err != nil {
		return err
	}
	if _, err := a.docs.Get(ctx, id); err != nil {
		return err
	}

	req := &api.UpdateDocumentRequest{}

	if v, err := GetSimpleText(a.reader, "New title (empty to keep)", os.Stdout); err != nil {
		return err
	} else if v != "" {
		req.Title = &v
	}
	if v, err := GetSimpleText(a.reader, "New location (empty to keep)", os.Stdout); err != nil {
		return err
	} else if v != "" {
		req.Location = &v
	}
	if v, err := GetSimpleText(a.reader, "New description (empty to keep)", os.Stdout); err != nil {
		return err
	} else if v != "" {
		req.Description = &v
	}
	if v, err := GetSimpleText(a.reader, "New category (empty to keep)", os.Stdout); err != nil {
		return err
	} else if v != "" {
		c := api.Category(v)
		req.Category = &c
	}
	if v, err := GetSimpleText(a.reader, "New urgency tags, comma-separated (empty to keep)", os.Stdout); err != nil {
		return err
	} else if v != "" {
		tags := parseTags(v)
		req.UrgencyTags = &tags
	}
	if v, err := GetSimpleText(a.reader, "New expiration date YYYY-MM-DD (empty to keep)", os.Stdout); err != nil {
		return err
	} else if v != "" {
		exp, err := time.Parse(dateLayout, v)
		if err != nil {
			return fmt.Errorf("invalid expiration date: %w", err)
		}
		req.ExpirationDate = &exp
	}

	doc, err := a.docs.Update(ctx, id, req)
	if err != nil {
		a.logger.Error(ctx, "failed to update document", "error", err)
		return err
	}

	fmt.Printf("Updated %s\n", doc.ID)
	return nil
}

// Delete tombstones a document by id; the deletion reaches other devices on
// the next sync.
func (a *App) Delete(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter document id to delete", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.docs.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Println("Deleted")
	return nil
}

// AttachImage uploads a local image file to object storage via a presigned
// URL and links the stored key to the document.
func (a *App) AttachImage(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter document id", os.Stdout)
	if err != nil {
		return err
	}
	if _, err := a.docs.Get(ctx, id); err != nil {
		return err
	}

	path, err := GetSimpleText(a.reader, "Enter image file path", os.Stdout)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	upload, err := a.apiClient.ImageUploadURL(ctx)
	if err != nil {
		return err
	}
	if err := netx.UploadToPresignedURL(ctx, upload.URL, data); err != nil {
		return err
	}

	if _, err := a.docs.Update(ctx, id, &api.UpdateDocumentRequest{ImageKey: &upload.Key}); err != nil {
		return err
	}

	fmt.Printf("Image stored under key %s\n", upload.Key)
	return nil
}

func printDocumentList(docs []models.Document) {
	if len(docs) == 0 {
		fmt.Println("No documents")
		return
	}
	for _, doc := range docs {
		line := fmt.Sprintf("%s  %-25s %-12s %s", doc.ID, doc.Title, doc.Category, doc.Location)
		if doc.ExpirationDate != nil {
			line += "  expires " + doc.ExpirationDate.Format(dateLayout)
		}
		if doc.SyncStatus == api.SyncStatusPending {
			line += "  (pending)"
		}
		fmt.Println(line)
	}
}

func parseTags(line string) []api.UrgencyTag {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	var tags []api.UrgencyTag
	for _, part := range strings.Split(line, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			tags = append(tags, api.UrgencyTag(part))
		}
	}
	return tags
}

func joinTags(tags []api.UrgencyTag) string {
	parts := make([]string, len(tags))
	for i, tag := range tags {
		parts[i] = string(tag)
	}
	return strings.Join(parts, ", ")
}
