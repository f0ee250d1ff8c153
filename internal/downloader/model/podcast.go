package model

// PodcastDTO is the part of a podcast page's __NEXT_DATA__ payload the
// importer reads
type PodcastDTO struct {
	Props struct {
		PageProps struct {
			Podcast Podcast `json:"podcast"`
		} `json:"pageProps"`
	} `json:"props"`
}

type Podcast struct {
	Pid      string    `json:"pid"`
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	Episodes []Episode `json:"episodes"`
}

type Episode struct {
	Eid       string    `json:"eid"`
	Title     string    `json:"title"`
	Duration  int       `json:"duration"`
	Enclosure Enclosure `json:"enclosure"`
}

type Enclosure struct {
	URL string `json:"url"`
}
