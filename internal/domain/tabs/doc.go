/*
Package tabs manages the ordered set of open editing sessions.

Each tab holds an independent snapshot of a file's content taken when it was
opened, editor state (cursor, scroll, selections) and its own bounded
undo/redo ledger. Tabs reference tree nodes weakly by FileID and Path; they
keep working as plain buffers when the node goes away.

Ordering rules:
  - pinned tabs always form a contiguous prefix
  - at most one tab is active
  - Open reuses the tab showing the same file, so a file has one tab
    unless it was duplicated
*/
package tabs
