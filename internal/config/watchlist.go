package config

// defaultSearchTerms returns the literature/trials search terms. Quoted
// phrases are passed through to the upstream search syntax verbatim.
func defaultSearchTerms() []string {
	return []string{
		`"minimal residual disease" ctDNA`,
		`"circulating tumor DNA" assay`,
		`"liquid biopsy" cancer detection`,
		`MRD test launch`,
		`"comprehensive genomic profiling" FDA`,
		`"early cancer detection" blood test`,
		`ctDNA monitoring recurrence`,
		`"tumor-informed" assay`,
	}
}

// defaultWatchlist returns the vendors whose announcements are monitored.
// Newsroom URLs drift as sites get redesigned; a dead URL costs one warning
// per run, nothing more.
func defaultWatchlist() []Company {
	return []Company{
		{Name: "Natera", Ticker: "NTRA", Newsroom: "https://www.natera.com/company/news/"},
		{Name: "Guardant Health", Ticker: "GH", Newsroom: "https://investors.guardanthealth.com/press-releases"},
		{Name: "Exact Sciences", Ticker: "EXAS", Newsroom: "https://www.exactsciences.com/newsroom"},
		{Name: "Foundation Medicine", Newsroom: "https://www.foundationmedicine.com/press-releases"},
		{Name: "Tempus", Ticker: "TEM", Newsroom: "https://www.tempus.com/news/"},
		{Name: "Caris Life Sciences", Ticker: "CAI", Newsroom: "https://www.carislifesciences.com/news/"},
		{Name: "NeoGenomics", Ticker: "NEO", Newsroom: "https://neogenomics.com/company/news"},
		{Name: "Myriad Genetics", Ticker: "MYGN", Newsroom: "https://myriad.com/news/"},
		{Name: "Illumina", Ticker: "ILMN", Newsroom: "https://www.illumina.com/company/news-center.html"},
		{Name: "Grail", Ticker: "GRAL", Newsroom: "https://grail.com/press-releases/"},
		{Name: "Freenome", Newsroom: "https://www.freenome.com/newsroom"},
		{Name: "Delfi Diagnostics", Newsroom: "https://delfidiagnostics.com/news/"},
		{Name: "Haystack Oncology", Newsroom: "https://www.haystackoncology.com/news"},
		{Name: "Personalis", Ticker: "PSNL", Newsroom: "https://www.personalis.com/news-events/"},
		{Name: "Invitae", Newsroom: "https://www.invitae.com/en/news"},
		{Name: "Adaptive Biotechnologies", Ticker: "ADPT", Newsroom: "https://www.adaptivebiotech.com/news/"},
		{Name: "Veracyte", Ticker: "VCYT", Newsroom: "https://www.veracyte.com/news-events"},
		{Name: "Biodesix", Ticker: "BDSX", Newsroom: "https://www.biodesix.com/news"},
		{Name: "BillionToOne", Newsroom: "https://billiontoone.com/newsroom"},
		{Name: "Burning Rock", Ticker: "BNR", Newsroom: "https://ir.brbiotech.com/news-releases"},
	}
}
