package topics

import (
	"fmt"
	"log"
	"strings"
	"sync"

	readability "github.com/go-shiori/go-readability"

	"robojobs/config"
	"robojobs/types"
)

// WorkerCount is the number of concurrent article extractions
const WorkerCount = 5

// maxContentChars bounds the article text carried into the script prompt
const maxContentChars = 4000

// extractFunc fetches readable text for a URL. Tests replace it.
var extractFunc = func(url string) (string, error) {
	article, err := readability.FromURL(url, config.ExtractTimeout)
	if err != nil {
		return "", fmt.Errorf("readability extraction failed: %w", err)
	}
	return article.TextContent, nil
}

// Enrich fetches the full article text for each topic with a URL using a
// small worker pool. Failures leave the topic unchanged.
func Enrich(topics []types.Topic) {
	var wg sync.WaitGroup
	jobs := make(chan int, len(topics))

	for w := 0; w < WorkerCount; w++ {
		go func(workerID int) {
			for i := range jobs {
				if err := enrichOne(&topics[i]); err != nil {
					log.Printf("[Worker %d] Failed to extract %s: %v", workerID, topics[i].URL, err)
				}
				wg.Done()
			}
		}(w)
	}

	for i := range topics {
		wg.Add(1)
		jobs <- i
	}

	wg.Wait()
	close(jobs)
}

func enrichOne(topic *types.Topic) error {
	if topic.URL == "" {
		return fmt.Errorf("topic URL is empty")
	}

	text, err := extractFunc(topic.URL)
	if err != nil {
		return err
	}

	topic.Content = truncate(strings.Join(strings.Fields(text), " "), maxContentChars)
	log.Printf("✓ Extracted: %s", truncate(topic.Title, 60))
	return nil
}
