package db

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- JOB TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS job SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS kind ON job TYPE string ASSERT $value IN ["hunt", "verification"];
    DEFINE FIELD IF NOT EXISTS status ON job TYPE string
        ASSERT $value IN ["pending", "running", "paused", "completed", "failed", "canceled"];
    -- Complete input snapshot needed to resume, never a live reference
    DEFINE FIELD IF NOT EXISTS params ON job TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS total_units ON job TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS processed_units ON job TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS succeeded_units ON job TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS skipped_units ON job TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS failed_units ON job TYPE int DEFAULT 0;
    -- Offset of the next unit to process
    DEFINE FIELD IF NOT EXISTS checkpoint ON job TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS current_task ON job TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS last_error ON job TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS cancellation_requested ON job TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS created_at ON job TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS started_at ON job TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS last_activity_at ON job TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS completed_at ON job TYPE option<datetime>;

    DEFINE INDEX IF NOT EXISTS job_status ON job FIELDS status;
    DEFINE INDEX IF NOT EXISTS job_activity ON job FIELDS last_activity_at;

    -- ==========================================================================
    -- REVIEW ITEM TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS review_item SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS job ON review_item TYPE record<job>;
    DEFINE FIELD IF NOT EXISTS status ON review_item TYPE string
        ASSERT $value IN ["pending", "accepted", "rejected"];
    DEFINE FIELD IF NOT EXISTS candidate ON review_item TYPE object FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS created_at ON review_item TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS resolved_at ON review_item TYPE option<datetime>;

    DEFINE INDEX IF NOT EXISTS review_item_job ON review_item FIELDS job;
    DEFINE INDEX IF NOT EXISTS review_item_status ON review_item FIELDS status;

    -- ==========================================================================
    -- LEAD TABLE (approved procurement links)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS lead SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS agency ON lead TYPE string;
    DEFINE FIELD IF NOT EXISTS title ON lead TYPE string;
    DEFINE FIELD IF NOT EXISTS url ON lead TYPE string;
    DEFINE FIELD IF NOT EXISTS state ON lead TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS status ON lead TYPE string DEFAULT "active"
        ASSERT $value IN ["active", "inactive"];
    DEFINE FIELD IF NOT EXISTS source ON lead TYPE string DEFAULT "manual";
    DEFINE FIELD IF NOT EXISTS verify_status ON lead TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS http_status ON lead TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS last_verified_at ON lead TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS created_at ON lead TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS lead_status ON lead FIELDS status;
    DEFINE INDEX IF NOT EXISTS lead_url ON lead FIELDS url;
`
