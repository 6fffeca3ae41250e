// Package process cleans up the browser processes left behind by the PDF
// renderer. Chrome forks helper processes that survive the leader being
// killed, so the whole group is terminated.
package process
