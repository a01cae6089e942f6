package pages

import (
	"fmt"

	"github.com/chatlab/corpus/internal/dashboard/ui"
	"github.com/chatlab/corpus/internal/dashboard/ui/components"
)

// RenderImportForm renders import.start's form: a server-side file path
// plus an optional corpus id, submitting to /dashboard/import.
func RenderImportForm() string {
	content := ui.ContainerStart()
	content += ui.CardStart("Start an import", "cloud-upload")
	content += `<form method="post" action="/dashboard/import">
    <div class="mb-3">
        <label class="form-label">Export file path (on the server)</label>
        <input type="text" class="form-control font-monospace" name="path" placeholder="/data/exports/group.jsonl" required>
    </div>
    <div class="mb-3">
        <label class="form-label">Corpus id (optional — defaults to a generated id)</label>
        <input type="text" class="form-control font-monospace" name="corpusId">
    </div>
    <button type="submit" class="btn btn-primary"><i class="bi bi-cloud-upload me-1"></i>Start import</button>
</form>`
	content += ui.CardEnd()
	content += ui.ContainerEnd()
	return ui.Header("ChatLab Dashboard — Import") + ui.NavbarAndBody("/dashboard/import", content) + ui.Footer()
}

// RenderImportStatus renders one job's live status page, subscribing to
// /dashboard/import/:jobId/events with an EventSource in an embedded script.
func RenderImportStatus(jobID string) string {
	content := ui.ContainerStart()
	content += ui.CardStart(fmt.Sprintf("Import job %s", jobID), "cloud-upload")
	content += fmt.Sprintf(`<div id="import-status">%s</div>
<script>
(function() {
  var es = new EventSource("/dashboard/import/%s/events");
  var el = document.getElementById("import-status");
  es.onmessage = function(ev) { el.innerHTML = ev.data; };
  es.addEventListener("done", function(ev) { el.innerHTML = ev.data; es.close(); });
  es.addEventListener("error-event", function(ev) { el.innerHTML = ev.data; es.close(); });
})();
</script>`, components.InfoAlert("Waiting for progress…"), jobID)
	content += ui.CardEnd()
	content += ui.ContainerEnd()
	return ui.Header("ChatLab Dashboard — Import Status") + ui.NavbarAndBody("/dashboard/import", content) + ui.Footer()
}
