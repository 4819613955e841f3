package schema

import "fmt"

// Dataset bundles a Schema with the per-dataset load policy: where its files
// live (relative to the configured data root), whether the destination table
// is rebuilt from scratch on every run, whether files already imported should
// be detected and skipped, and which columns receive secondary indexes.
type Dataset struct {
	Name   string
	Schema Schema

	// Folder is the dataset's file folder relative to the data root.
	Folder string

	// DropBeforeCreate selects destructive-refresh semantics: the table is
	// dropped and recreated, discarding prior data. Datasets that instead
	// accumulate across runs leave this false and rely on duplicate checking.
	DropBeforeCreate bool

	// CheckDuplicates enables the first-row probe that skips files whose
	// content is already in the table.
	CheckDuplicates bool

	// IndexColumns lists columns that get a secondary index after the load.
	IndexColumns []string
}

// Registry is the set of built-in datasets, keyed by name.
var registry = map[string]Dataset{
	"org":          orgDataset,
	"per":          perDataset,
	"raw_feed_per": rawFeedPerDataset,
}

// Lookup returns the dataset registered under name.
func Lookup(name string) (Dataset, error) {
	d, ok := registry[name]
	if !ok {
		return Dataset{}, fmt.Errorf("schema: unknown dataset %q", name)
	}
	return d, nil
}

// Datasets returns every registered dataset in the order the production run
// processes them: organizations first, then people, then the raw person feed.
func Datasets() []Dataset {
	return []Dataset{orgDataset, perDataset, rawFeedPerDataset}
}

// orgDataset is the organization export. The table is rebuilt on every run,
// so no duplicate checking is needed.
var orgDataset = Dataset{
	Name:             "org",
	Folder:           "20250922/org/csv",
	DropBeforeCreate: true,
	IndexColumns: []string{
		"COMPANY_NAME",
		"DOMAIN",
		"RBID",
		"HEADQUARTERS_COUNTRY_CODE",
	},
	Schema: Schema{
		Table: "releases_org_export",
		Columns: []Column{
			{"ABOUT_US", Text},
			{"CATEGORY_CRUNCHBASE", Text},
			{"CATEGORY_G2", Text},
			{"COMPANY_ENTITY_TYPE", Text},
			{"COMPANY_LEGAL_TYPE", Text},
			{"COMPANY_NAME", Text},
			{"COMPANY_NAME_LANGUAGE", Text},
			{"EMPLOYEE_COUNT_MAX", Integer},
			{"EMPLOYEE_COUNT_MIN", Integer},
			{"EMPLOYEE_COUNT_RANGE", Text},
			{"EMPLOYEE_PROFILES_ON_LINKEDIN", Integer},
			{"FOUNDED", Integer},
			{"HEADQUARTERS_CITY", Text},
			{"HEADQUARTERS_COUNTRY_CODE", Text},
			{"HEADQUARTERS_COUNTRY_NAME", Text},
			{"HEADQUARTERS_COUNTRY_REGION", Text},
			{"HEADQUARTERS_CONTINENT", Text},
			{"HEADQUARTERS_POSTCODE", Text},
			{"HEADQUARTERS_STATE_CODE", Text},
			{"HEADQUARTERS_STATE_NAME", Text},
			{"HEADQUARTERS_STREET", Text},
			{"INDUSTRY_LINKEDIN", Text},
			{"INDUSTRY_SIC_CODE", Text},
			{"INDUSTRY_SIC_DESCRIPTION", Text},
			{"INDUSTRY_NAICS_CODE", Text},
			{"INDUSTRY_NAICS_DESCRIPTION", Text},
			{"INDUSTRY_NAICS_2022_CODE", Text},
			{"INDUSTRY_NAICS_2022_DESCRIPTION", Text},
			{"PREDICTED_INDUSTRY_NAICS_2022_CODE", Text},
			{"PREDICTED_INDUSTRY_NAICS_2022_DESCRIPTION", Text},
			{"INDUSTRY_UK_STANDARD_2007_CODE", Text},
			{"INDUSTRY_UK_STANDARD_2007_DESCRIPTION", Text},
			{"IS_LINKEDIN_URL_CLAIMED", Boolean},
			{"LINKEDIN_FOLLOWERS", Integer},
			{"LINKEDIN_URL", Text},
			{"LINKEDIN_URL_ID", Numeric},
			{"LOCATION_CITY", Text},
			{"LOCATION_COUNT", Integer},
			{"LOCATION_COUNTRY_CODE", Text},
			{"LOCATION_COUNTRY_NAME", Text},
			{"LOCATION_COUNTRY_REGION", Text},
			{"LOCATION_CONTINENT", Text},
			{"LOCATION_IS_PRIMARY", Boolean},
			{"LOCATION_POSTCODE", Text},
			{"LOCATION_STATE_CODE", Text},
			{"LOCATION_STATE_NAME", Text},
			{"LOCATION_STREET", Text},
			{"PHONE", Text},
			{"RBID", Text},
			{"REVENUE_MAX", Numeric},
			{"REVENUE_MIN", Numeric},
			{"REVENUE_RANGE", Text},
			{"SPECIALTIES", Text},
			{"UPDATED_AT", Date},
			{"DOMAIN", Text},
			{"DOMAIN_TLD", Text},
			{"WEBSITE", Text},
			{"IS_WEBSITE_WORKING", Boolean},
			{"IS_WEBSITE_FOR_SALE", Boolean},
		},
	},
}

// perDataset is the person export. The table is kept across runs and grows
// incrementally, so duplicate checking is enabled instead of a drop.
var perDataset = Dataset{
	Name:            "per",
	Folder:          "20250922/per/csv",
	CheckDuplicates: true,
	IndexColumns: []string{
		"RBID",
		"RBID_ORG",
		"RBID_PAO",
		"FULL_NAME",
		"EMAIL_ADDRESS",
		"LINKEDIN_URL",
	},
	Schema: Schema{
		Table: "releases_per_export",
		Columns: []Column{
			{"LINKEDIN_URL", Text},
			{"ABOUT_ME", Text},
			{"CELLPHONE", Text},
			{"CITY", Text},
			{"COUNTRY_CODE", Text},
			{"COUNTRY_NAME", Text},
			{"COUNTRY_REGION", Text},
			{"CONTINENT", Text},
			{"DIRECT_PHONE", Text},
			{"EDUCATION", Text},
			{"FIRST_NAME", Text},
			{"FULL_NAME", Text},
			{"INTERESTS", Text},
			{"JOB_COUNT", Integer},
			{"JOB_DESCRIPTION", Text},
			{"JOB_END_DATE", Text},
			{"JOB_IS_CURRENT", Boolean},
			{"JOB_LEVEL", Text},
			{"JOB_LOCATION_CITY", Text},
			{"JOB_LOCATION_COUNTRY", Text},
			{"JOB_LOCATION_COUNTRY_CODE", Text},
			{"JOB_LOCATION_COUNTRY_REGION", Text},
			{"JOB_LOCATION_CONTINENT", Text},
			{"JOB_LOCATION_STATE", Text},
			{"JOB_LOCATION_STATE_CODE", Text},
			{"JOB_START_DATE", Text},
			{"JOB_ORDER_IN_PROFILE", Integer},
			{"JOB_ORG_LINKEDIN_URL", Text},
			{"JOB_TITLE", Text},
			{"JOB_FUNCTION", Text},
			{"LANGUAGES", Text},
			{"LAST_NAME", Text},
			{"LINKEDIN_CONNECTIONS_COUNT", Integer},
			{"LINKEDIN_HEADLINE", Text},
			{"LINKEDIN_INDUSTRY", Text},
			{"MIDDLE_NAME", Text},
			{"NICKNAME_NAME", Text},
			{"RBID", Text},
			{"RBID_ORG", Text},
			{"RBID_PAO", Text},
			{"SKILLS", Text},
			{"CERTIFICATIONS", Text},
			{"PATENTS", Text},
			{"PUBLICATIONS", Text},
			{"WEBSITES", Text},
			{"STATE_CODE", Text},
			{"STATE_NAME", Text},
			{"SUFFIX_NAME", Text},
			{"TITLE_NAME", Text},
			{"EMAIL_DOMAIN", Text},
			{"UPDATED_AT", Timestamp},
			{"RN", Integer},
			{"EMAIL_STATUS", Text},
			{"EMAIL_ADDRESS", Text},
			{"EMAIL_LAST_VERIFIED_AT", Timestamp},
			{"PERSONA", Text},
		},
	},
}

// rawFeedPerDataset is the raw person feed. Full refresh on every run.
var rawFeedPerDataset = Dataset{
	Name:             "raw_feed_per",
	Folder:           "20250922/raw_feed_per",
	DropBeforeCreate: true,
	IndexColumns: []string{
		"RBID",
		"RBID_ORG",
		"RBID_PAO",
		"RBUUID",
		"LINKEDIN_URL",
		"LINKEDIN_NUM_ID",
	},
	Schema: Schema{
		Table: "releases_raw_feed_per_export",
		Columns: []Column{
			{"RBID", Text},
			{"RBID_ORG", Text},
			{"RBID_PAO", Text},
			{"RBUUID", Text},
			{"CREATED_AT", Date},
			{"UPDATED_AT", Date},
			{"FULL_NAME", Text},
			{"TITLE_NAME", Text},
			{"FIRST_NAME", Text},
			{"MIDDLE_NAME", Text},
			{"LAST_NAME", Text},
			{"SUFFIX_NAME", Text},
			{"NICKNAME_NAME", Text},
			{"LINKEDIN_CONNECTIONS_COUNT", Integer},
			{"ABOUT_ME", Text},
			{"EDUCATION", Text},
			{"LINKEDIN_HEADLINE", Text},
			{"LINKEDIN_URL", Text},
			{"LINKEDIN_URL_SLUG", Text},
			{"LINKEDIN_INDUSTRY", Text},
			{"CITY", Text},
			{"STATE_NAME", Text},
			{"STATE_CODE", Text},
			{"COUNTRY_NAME", Text},
			{"COUNTRY_CODE", Text},
			{"COUNTRY_REGION", Text},
			{"CONTINENT", Text},
			{"RBUUID_ORG", Text},
			{"JOB_IS_CURRENT", Boolean},
			{"JOB_COUNT", Integer},
			{"JOB_TITLE", Text},
			{"JOB_LEVEL", Text},
			{"JOB_FUNCTION", Text},
			{"JOB_DESCRIPTION", Text},
			{"JOB_START_DATE", Text},
			{"JOB_END_DATE", Text},
			{"JOB_LOCATION_CITY", Text},
			{"JOB_LOCATION_STATE", Text},
			{"JOB_LOCATION_STATE_CODE", Text},
			{"JOB_LOCATION_COUNTRY", Text},
			{"JOB_LOCATION_COUNTRY_CODE", Text},
			{"JOB_LOCATION_COUNTRY_REGION", Text},
			{"JOB_LOCATION_CONTINENT", Text},
			{"JOB_ORDER_IN_PROFILE", Integer},
			{"JOB_ORG_LINKEDIN_URL", Text},
			{"JOB_ORG_NAME", Text},
			{"IS_MEMORIALIZED_PERSON", Boolean},
			{"LINKEDIN_NUM_ID", Text},
		},
	},
}
