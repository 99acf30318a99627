// Package expenses stores costs incurred on a delivery. Rows reference a
// delivery code and are removed when the delivery is deleted.
package expenses
