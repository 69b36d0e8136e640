package timeseries

import "time"

// buildWindowQuery filters one subject's samples of one measurement since `since`,
// oldest first. Pages are read inside the point in time pitID; after carries the
// previous page's last sort values.
func buildWindowQuery(measurement, subjectTag, subjectID string, since time.Time, pitID string, size int, after []interface{}) map[string]interface{} {
	query := map[string]interface{}{
		"size":             size,
		"track_total_hits": true,
		"pit": map[string]interface{}{
			"id":         pitID,
			"keep_alive": pitKeepAlive,
		},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{
						"range": map[string]interface{}{
							"@timestamp": map[string]interface{}{
								"gte":    since.UTC().Format(time.RFC3339),
								"format": "strict_date_optional_time",
							},
						},
					},
					map[string]interface{}{
						"term": map[string]interface{}{"measurement": measurement},
					},
					map[string]interface{}{
						"term": map[string]interface{}{subjectTag: subjectID},
					},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"@timestamp": map[string]interface{}{"order": "asc"}},
		},
		"_source": []string{"@timestamp", subjectTag, fieldHeartRate, fieldHRV, fieldEDA},
	}
	if len(after) > 0 {
		query["search_after"] = after
	}
	return query
}
